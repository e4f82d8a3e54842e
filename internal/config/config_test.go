package config_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/fantaleague/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.StoreDriver, convey.ShouldEqual, config.DriverMemory)
			convey.So(cfg.CacheDriver, convey.ShouldEqual, config.DriverMemory)
			convey.So(cfg.SeasonGames, convey.ShouldEqual, 38)
			convey.So(cfg.QueueSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.WorkerCount, convey.ShouldBeGreaterThan, 0)
			convey.So(cfg.Validate(context.Background()), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		ctx := context.Background()
		cfg := config.New()

		convey.Convey("When postgres is selected without a URL", func() {
			cfg.StoreDriver = config.DriverPostgres

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(cfg.Validate(ctx), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When redis is selected without a URL", func() {
			cfg.CacheDriver = config.DriverRedis

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(cfg.Validate(ctx), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the store driver is unknown", func() {
			cfg.StoreDriver = "sqlite"

			convey.Convey("Then validation fails", func() {
				convey.So(cfg.Validate(ctx), convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When the refresh interval is negative", func() {
			cfg.RefreshIntervalSeconds = -1

			convey.Convey("Then validation fails", func() {
				convey.So(cfg.Validate(ctx), convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When both drivers have URLs", func() {
			cfg.StoreDriver = config.DriverPostgres
			cfg.DatabaseURL = "postgres://localhost/fanta?sslmode=disable"
			cfg.CacheDriver = config.DriverRedis
			cfg.RedisURL = "redis://localhost:6379/0"

			convey.Convey("Then validation passes", func() {
				convey.So(cfg.Validate(ctx), convey.ShouldBeNil)
			})
		})
	})
}
