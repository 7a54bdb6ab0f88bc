package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/rd2weekly/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LineupSlots, convey.ShouldResemble, config.DefaultLineupSlots())
			convey.So(cfg.MetricsEnabled, convey.ShouldBeTrue)
		})

		convey.Convey("When environment variables are set", func() {
			_ = os.Setenv("RD2_ADDR", ":8080")
			_ = os.Setenv("RD2_QUEUE_SIZE", "16")
			_ = os.Setenv("RD2_BOARD_SIZE", "5")
			_ = os.Setenv("RD2_PARALLEL_CATEGORIES", "true")
			_ = os.Setenv("RD2_METRICS_ENABLED", "false")

			cfg, err := config.Load(ctx)

			convey.Convey("Then they override defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 16)
				convey.So(cfg.BoardSize, convey.ShouldEqual, 5)
				convey.So(cfg.ParallelCategories, convey.ShouldBeTrue)
				convey.So(cfg.MetricsEnabled, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When a YAML file is provided", func() {
			tmpFile := createTempConfigFile(`
addr: ":9090"
all_star_seed: 12
lineup_slots:
  - position: C
    count: 1
  - position: OF
    count: 3
nicknames:
  "2044525": "Kiké"
`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("RD2_CONFIG", tmpFile)
			_ = os.Setenv("RD2_ADDR", ":7070")

			cfg, err := config.Load(ctx)

			convey.Convey("Then file values apply and env still wins", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.AllStarSeed, convey.ShouldEqual, 12)
				convey.So(cfg.LineupSlots, convey.ShouldResemble, []config.SlotConfig{
					{Position: "C", Count: 1},
					{Position: "OF", Count: 3},
				})
				convey.So(cfg.Nicknames["2044525"], convey.ShouldEqual, "Kiké")
			})
		})

		convey.Convey("When the YAML file is malformed", func() {
			tmpFile := createTempConfigFile("addr: [unterminated\n")
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("RD2_CONFIG", tmpFile)

			_, err := config.Load(ctx)

			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When the file does not exist", func() {
			_ = os.Setenv("RD2_CONFIG", "/nonexistent/rd2.yaml")

			_, err := config.Load(ctx)

			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When an env value is invalid", func() {
			_ = os.Setenv("RD2_WORKER_COUNT", "0")

			_, err := config.Load(ctx)

			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			_, err := config.Load(cctx)

			convey.So(errors.Is(err, context.Canceled), convey.ShouldBeTrue)
		})
	})
}

func clearConfigEnvVars() {
	for _, k := range []string{
		"RD2_CONFIG", "RD2_ADDR", "RD2_QUEUE_SIZE", "RD2_BOARD_SIZE",
		"RD2_PARALLEL_CATEGORIES", "RD2_WORKER_COUNT", "RD2_METRICS_ENABLED",
	} {
		_ = os.Unsetenv(k)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "rd2-config-*.yaml")
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
