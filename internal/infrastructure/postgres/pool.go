package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-stock/pkg/config"
)

const applicationName = "inventario-stock"

var errNoIPv4 = errors.New("sin dirección IPv4")

// resolvers orden de consulta: DNS del sistema y luego uno público, para contenedores cuyo DNS solo devuelve AAAA.
var resolvers = []*net.Resolver{
	net.DefaultResolver,
	{
		PreferGo: true,
		Dial: func(ctx context.Context, _, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "udp", "8.8.8.8:53")
		},
	},
}

// NewPool abre el pool del libro de stock.
// Cada conexión fija lock_timeout para que un FOR UPDATE bloqueado falle en lugar de colgar la petición.
func NewPool(ctx context.Context, cfg config.DBConfig, log zerolog.Logger) (*pgxpool.Pool, error) {
	dsn := cfg.ConnectionString()
	if cfg.DatabaseURL == "" {
		if ip, err := lookupIPv4(ctx, cfg.Host); err == nil {
			withIP := cfg
			withIP.Host = ip
			dsn = withIP.DSN()
		}
	} else {
		dsn = rewriteURLHost(ctx, cfg.DatabaseURL)
	}

	pc, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}
	pc.ConnConfig.DialFunc = dialIPv4
	pc.ConnConfig.RuntimeParams["application_name"] = applicationName
	if cfg.LockTimeout > 0 {
		pc.ConnConfig.RuntimeParams["lock_timeout"] = strconv.FormatInt(cfg.LockTimeout.Milliseconds(), 10)
	}

	maxConns := int32(cfg.MaxConns)
	if maxConns <= 0 {
		maxConns = 25
	}
	pc.MaxConns = maxConns
	pc.MinConns = min(2, maxConns)
	pc.MaxConnLifetime = time.Hour
	pc.MaxConnIdleTime = 30 * time.Minute
	pc.HealthCheckPeriod = time.Minute
	pc.AfterConnect = func(_ context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("crear pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping DB: %w", err)
	}
	log.Info().
		Str("host", pc.ConnConfig.Host).
		Int32("max_conns", pc.MaxConns).
		Dur("lock_timeout", cfg.LockTimeout).
		Msg("pool PostgreSQL listo")
	return pool, nil
}

// dialIPv4 conecta por tcp4 cuando el host tiene IPv4; si no, cae al dial normal.
func dialIPv4(ctx context.Context, network, addr string) (net.Conn, error) {
	var d net.Dialer
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}
	ip, err := lookupIPv4(ctx, host)
	if err != nil {
		return d.DialContext(ctx, network, addr)
	}
	return d.DialContext(ctx, "tcp4", net.JoinHostPort(ip, port))
}

func lookupIPv4(ctx context.Context, host string) (string, error) {
	if ip := net.ParseIP(host); ip != nil {
		if ip.To4() == nil {
			return "", errNoIPv4
		}
		return host, nil
	}
	for _, r := range resolvers {
		ips, err := r.LookupIP(ctx, "ip4", host)
		if err != nil {
			continue
		}
		for _, ip := range ips {
			if v4 := ip.To4(); v4 != nil {
				return v4.String(), nil
			}
		}
	}
	return "", errNoIPv4
}

// rewriteURLHost reemplaza el host de DATABASE_URL por su IPv4. Ante cualquier fallo devuelve la URL original.
func rewriteURLHost(ctx context.Context, raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	ip, err := lookupIPv4(ctx, u.Hostname())
	if err != nil {
		return raw
	}
	port := u.Port()
	if port == "" {
		port = "5432"
	}
	u.Host = net.JoinHostPort(ip, port)
	return u.String()
}
