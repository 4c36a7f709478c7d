package config_test

import (
	"context"
	"errors"
	"os"
	"runtime"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/crosswalk/internal/config"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.JobQueueSize, convey.ShouldEqual, 64)
				convey.So(cfg.RunnerCount, convey.ShouldEqual, runtime.NumCPU())
				convey.So(cfg.BatchSize, convey.ShouldEqual, 200)
				convey.So(cfg.MinLengthRatio, convey.ShouldEqual, 0.3)
				convey.So(cfg.MinTokenOverlap, convey.ShouldEqual, 0.15)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("CROSSWALK_ADDR", ":8080")
			_ = os.Setenv("CROSSWALK_QUEUE_SIZE", "128")
			_ = os.Setenv("CROSSWALK_RUNNER_COUNT", "4")
			_ = os.Setenv("CROSSWALK_BATCH_SIZE", "500")
			_ = os.Setenv("CROSSWALK_MIN_LENGTH_RATIO", "0.5")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.JobQueueSize, convey.ShouldEqual, 128)
				convey.So(cfg.RunnerCount, convey.ShouldEqual, 4)
				convey.So(cfg.BatchSize, convey.ShouldEqual, 500)
				convey.So(cfg.MinLengthRatio, convey.ShouldEqual, 0.5)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
queue_size: 256
runner_count: 8
max_dataset_rows: 50000
min_token_overlap: 0.2
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("CROSSWALK_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.JobQueueSize, convey.ShouldEqual, 256)
				convey.So(cfg.RunnerCount, convey.ShouldEqual, 8)
				convey.So(cfg.MaxDatasetRows, convey.ShouldEqual, 50000)
				convey.So(cfg.MinTokenOverlap, convey.ShouldEqual, 0.2)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":9090"
queue_size: 256
runner_count: 8
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("CROSSWALK_CONFIG", tmpFile)
			_ = os.Setenv("CROSSWALK_ADDR", ":8080")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")    // Overridden by env
				convey.So(cfg.JobQueueSize, convey.ShouldEqual, 256) // From file
				convey.So(cfg.RunnerCount, convey.ShouldEqual, 8)    // From file
			})
		})

		convey.Convey("When loading config with partial YAML file", func() {
			yamlContent := `
addr: ":9090"
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("CROSSWALK_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should merge with defaults for missing fields", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.JobQueueSize, convey.ShouldEqual, 64)
				convey.So(cfg.BatchSize, convey.ShouldEqual, 200)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("CROSSWALK_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("CROSSWALK_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func TestConfigValidation(t *testing.T) {
	convey.Convey("Given config validation", t, func() {
		ctx := context.Background()

		convey.Convey("When addr is empty", func() {
			_ = os.Setenv("CROSSWALK_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When queue_size is not positive", func() {
			_ = os.Setenv("CROSSWALK_QUEUE_SIZE", "0")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When batch_size is negative", func() {
			_ = os.Setenv("CROSSWALK_BATCH_SIZE", "-1")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When min_length_ratio is out of range", func() {
			_ = os.Setenv("CROSSWALK_MIN_LENGTH_RATIO", "1.5")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When min_token_overlap is out of range", func() {
			_ = os.Setenv("CROSSWALK_MIN_TOKEN_OVERLAP", "1")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When min_token_overlap is zero", func() {
			_ = os.Setenv("CROSSWALK_MIN_TOKEN_OVERLAP", "0")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it is accepted", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.MinTokenOverlap, convey.ShouldEqual, 0.0)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"CROSSWALK_CONFIG",
		"CROSSWALK_ADDR",
		"CROSSWALK_QUEUE_SIZE",
		"CROSSWALK_RUNNER_COUNT",
		"CROSSWALK_BATCH_SIZE",
		"CROSSWALK_MAX_DATASET_ROWS",
		"CROSSWALK_MIN_LENGTH_RATIO",
		"CROSSWALK_MIN_TOKEN_OVERLAP",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "crosswalk-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
