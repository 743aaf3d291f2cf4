package main

import (
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"bidcore/api"
)

func ParseArgs() Args {
	// server config
	pflag.String("server-url", "0.0.0.0:8080", "")
	pflag.String("server-id", "bidcore-0", "")

	// db config
	pflag.String("db-user", "", "")
	pflag.String("db-password", "", "")
	pflag.String("db-host", "", "")
	pflag.Int("db-port", 5432, "")
	pflag.String("db-database", "", "")
	pflag.String("db-schema", "", "")

	// redis config
	pflag.String("redis-addr", "", "")
	pflag.String("redis-password", "", "")
	pflag.Int("redis-db", 15, "")
	pflag.String("redis-key-prefix", "bidcore:", "")
	pflag.String("redis-consumer-group", "bidcore", "")

	// redis stream keys
	pflag.String("redis-stream-key-for-lifecycle", "auction-lifecycle-stream", "")
	pflag.String("redis-stream-key-for-outcome", "bid-outcome-stream", "")

	// lock config
	pflag.Duration("lock-wait-timeout", 3*time.Second, "")
	pflag.Duration("lock-expiry", 8*time.Second, "")

	// retention config
	pflag.Duration("retention-window", 72*time.Hour, "")

	// bind pflag to viper
	pflag.Parse()
	viper.BindPFlags(pflag.CommandLine)
	viper.AutomaticEnv()
	viper.SetEnvPrefix("BIDCORE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	// initial arguments
	return Args{
		ServerURL: viper.GetString("server-url"),
		ServerConfig: api.ServerConfig{
			ID: viper.GetString("server-id"),
			DB: api.DBConfig{
				User:     viper.GetString("db-user"),
				Password: viper.GetString("db-password"),
				Host:     viper.GetString("db-host"),
				Port:     viper.GetInt("db-port"),
				Database: viper.GetString("db-database"),
				Schema:   viper.GetString("db-schema"),
			},
			Redis: api.RedisConfig{
				Addr:          viper.GetString("redis-addr"),
				Password:      viper.GetString("redis-password"),
				DB:            viper.GetInt("redis-db"),
				KeyPrefix:     viper.GetString("redis-key-prefix"),
				ConsumerGroup: viper.GetString("redis-consumer-group"),
				StreamKeys: api.RedisStreamKeys{
					Lifecycle: viper.GetString("redis-stream-key-for-lifecycle"),
					Outcome:   viper.GetString("redis-stream-key-for-outcome"),
				},
			},
			Lock: api.LockConfig{
				WaitTimeout: viper.GetDuration("lock-wait-timeout"),
				Expiry:      viper.GetDuration("lock-expiry"),
			},
			RetentionWindow: viper.GetDuration("retention-window"),
		},
	}
}

type Args struct {
	ServerURL    string
	ServerConfig api.ServerConfig
}

func (args Args) Validate() bool {
	return args.ServerURL != "" &&
		args.ServerConfig.ID != "" &&
		args.ServerConfig.DB.Host != "" &&
		args.ServerConfig.Redis.Addr != "" &&
		args.ServerConfig.Redis.StreamKeys.Lifecycle != "" &&
		args.ServerConfig.Redis.StreamKeys.Outcome != ""
}
