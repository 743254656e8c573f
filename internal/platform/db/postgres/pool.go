package postgres

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ogurasousui/employee-directory/internal/platform/config"
	"github.com/sirupsen/logrus"
)

// ApplicationName は pg_stat_activity に表示される接続名です。
const ApplicationName = "employee-directory"

// 入社日は DATE 列に暦日として保存するため、セッションのタイムゾーンを UTC に固定します。
const sessionTimeZone = "UTC"

// BuildPoolConfig は database 設定から pgxpool.Config を構築します。
// MaxIdleConns が MaxOpenConns を超える場合は MaxOpenConns に揃えます。
func BuildPoolConfig(cfg config.DatabaseConfig) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, errors.Wrap(err, "postgres: parse config")
	}

	if cfg.MaxOpenConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		poolCfg.MinConns = min(int32(cfg.MaxIdleConns), poolCfg.MaxConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}
	if cfg.ConnMaxIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.ConnMaxIdleTime
	}

	params := poolCfg.ConnConfig.RuntimeParams
	if _, ok := params["application_name"]; !ok {
		params["application_name"] = ApplicationName
	}
	params["timezone"] = sessionTimeZone

	return poolCfg, nil
}

// NewPool は pgxpool.Pool を生成し疎通確認を行います。
func NewPool(ctx context.Context, cfg config.DatabaseConfig, logger *logrus.Entry) (*pgxpool.Pool, error) {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}

	poolCfg, err := BuildPoolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, errors.Wrap(err, "postgres: create pool")
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrapf(err, "postgres: ping %s:%d", cfg.Host, cfg.Port)
	}

	logger.WithFields(logrus.Fields{
		"host":      cfg.Host,
		"database":  cfg.Name,
		"max_conns": poolCfg.MaxConns,
		"min_conns": poolCfg.MinConns,
	}).Info("postgres pool ready")

	return pool, nil
}

// Check はタイムアウト付きで疎通確認を行います。
func Check(ctx context.Context, p Pinger, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := p.Ping(ctx); err != nil {
		return errors.Wrap(err, "postgres: ping")
	}
	return nil
}
