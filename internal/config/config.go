package config

import (
	"os"

	"github.com/alexflint/go-arg"
)

// Config is read from the Lambda environment. EventFile is only used when
// invoking the handler locally.
type Config struct {
	LogLevel            string `arg:"--log-level,env:LOG_LEVEL" default:"info" help:"log level"`
	StackName           string `arg:"--stack-name,env:STACK_NAME" help:"stack name reported in notifications and metrics"`
	SNSTopicArn         string `arg:"--sns-topic-arn,env:SNS_TOPIC_ARN" help:"publish remediation notifications to this topic"`
	RemediationTable    string `arg:"--remediation-table,env:DYNAMODB_REMEDIATION_TABLE" help:"write remediation audit records to this table"`
	MetricsNamespace    string `arg:"--metrics-namespace,env:CLOUDWATCH_NAMESPACE" help:"publish remediation metrics to this namespace"`
	BlockPublicAccess   bool   `arg:"--block-public-access,env:BLOCK_PUBLIC_ACCESS" help:"also enable the bucket public access block"`
	RemediationAttempts int    `arg:"--remediation-attempts,env:AWS_MAX_ATTEMPTS_S3" default:"1" help:"attempts for the bucket acl call"`
	SideChannelAttempts int    `arg:"--side-channel-attempts,env:AWS_MAX_ATTEMPTS_SIDE_CHANNEL" default:"3" help:"attempts for sns, dynamodb and cloudwatch calls"`
	EventFile           string `arg:"positional" help:"path to a finding event to remediate locally"`
}

func (Config) Description() string {
	return "auto-remediate resets the ACL of buckets reported by security findings to private"
}

func (c Config) NotificationsEnabled() bool { return c.SNSTopicArn != "" }

func (c Config) AuditEnabled() bool { return c.RemediationTable != "" }

func (c Config) MetricsEnabled() bool { return c.MetricsNamespace != "" }

// Load parses args and the environment into a Config.
func Load(args []string) (Config, error) {
	var cfg Config

	p, err := arg.NewParser(arg.Config{Program: "auto-remediate"}, &cfg)
	if err != nil {
		return Config{}, err
	}

	if err := p.Parse(args); err != nil {
		return Config{}, err
	}

	cfg.normalize()

	return cfg, nil
}

// MustLoad is Load for main packages, exiting with usage on bad input.
func MustLoad() Config {
	var cfg Config
	arg.MustParse(&cfg)

	cfg.normalize()

	return cfg
}

func (c *Config) normalize() {
	if c.RemediationAttempts < 1 {
		c.RemediationAttempts = 1
	}
	if c.SideChannelAttempts < 1 {
		c.SideChannelAttempts = 1
	}
}

func InLambda() bool {
	_, inLambda := os.LookupEnv("AWS_LAMBDA_FUNCTION_NAME")
	return inLambda
}
