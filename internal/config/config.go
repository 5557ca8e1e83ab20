package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App    AppConfig    `mapstructure:"app"`
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
	DB     DBConfig     `mapstructure:"db"`
	Cron   CronConfig   `mapstructure:"cron"`

	Binance BinanceConfig `mapstructure:"binance"`
	Stream  StreamConfig  `mapstructure:"stream"`

	Triangle    TriangleConfig    `mapstructure:"triangle"`
	Statistical StatisticalConfig `mapstructure:"statistical"`
	Carry       CarryConfig       `mapstructure:"carry"`

	Scan ScanConfig `mapstructure:"scan"`
	Risk RiskConfig `mapstructure:"risk"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DBConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

type CronConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	ScanSpec string `mapstructure:"scan_spec"`
}

type BinanceConfig struct {
	SpotBaseURL    string        `mapstructure:"spot_base_url"`
	FuturesBaseURL string        `mapstructure:"futures_base_url"`
	P2PBaseURL     string        `mapstructure:"p2p_base_url"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

type StreamConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
	// MaxAge bounds how long a streamed price may serve as a spot quote
	// before falling back to REST.
	MaxAge time.Duration `mapstructure:"max_age"`
}

type TriangleConfig struct {
	Fiats  []string `mapstructure:"fiats"`
	Assets []string `mapstructure:"assets"`
	// SpotSymbols lists tradable asset-to-asset markets, e.g. "BTCUSDT".
	SpotSymbols []string `mapstructure:"spot_symbols"`

	StartCurrency string  `mapstructure:"start_currency"`
	MaxSteps      int     `mapstructure:"max_steps"`
	MinROIPct     float64 `mapstructure:"min_roi_pct"`
	// MaxROIPct rejects implausibly profitable cycles as data anomalies.
	MaxROIPct float64 `mapstructure:"max_roi_pct"`
	AmountUSD float64 `mapstructure:"amount_usd"`
}

type StatisticalConfig struct {
	// Pairs is the configured universe, each entry "SYM1/SYM2".
	Pairs []string `mapstructure:"pairs"`

	LookbackDays       int     `mapstructure:"lookback_days"`
	MinSamples         int     `mapstructure:"min_samples"`
	MinCorrelation     float64 `mapstructure:"min_correlation"`
	MaxCointPValue     float64 `mapstructure:"max_coint_pvalue"`
	EntryZScore        float64 `mapstructure:"entry_z_score"`
	PositionSizeUSD    float64 `mapstructure:"position_size_usd"`
	MaxPositionSizeUSD float64 `mapstructure:"max_position_size_usd"`
}

type CarryConfig struct {
	Symbols []string `mapstructure:"symbols"`

	MinBasisPct float64 `mapstructure:"min_basis_pct"`
	MaxBasisPct float64 `mapstructure:"max_basis_pct"`

	FundingPeriodsPerDay int     `mapstructure:"funding_periods_per_day"`
	HoldingPeriodDays    float64 `mapstructure:"holding_period_days"`
	// ConvergenceAssumption is the assumed fraction of the basis captured
	// over the holding period. A business assumption, not a fitted value.
	ConvergenceAssumption float64 `mapstructure:"convergence_assumption"`

	SpotFeePct    float64 `mapstructure:"spot_fee_pct"`
	FuturesFeePct float64 `mapstructure:"futures_fee_pct"`

	PositionSizeUSD    float64 `mapstructure:"position_size_usd"`
	MaxPositionSizeUSD float64 `mapstructure:"max_position_size_usd"`
}

type ScanConfig struct {
	MinReturnPct float64       `mapstructure:"min_return_pct"`
	MaxRiskScore float64       `mapstructure:"max_risk_score"`
	CapitalUSD   float64       `mapstructure:"capital_usd"`
	MaxPositions int           `mapstructure:"max_positions"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

type RiskConfig struct {
	// Base annualized volatility (pct) per strategy tag.
	BaseVolatility map[string]float64 `mapstructure:"base_volatility"`
	// DefaultCorrelation is used for strategy pairs without an estimate.
	DefaultCorrelation float64 `mapstructure:"default_correlation"`

	TargetVolatilityPct float64 `mapstructure:"target_volatility_pct"`

	KellyFloor float64 `mapstructure:"kelly_floor"`
	KellyCap   float64 `mapstructure:"kelly_cap"`
	// MaxCapitalFraction caps any single position at this share of capital.
	MaxCapitalFraction float64 `mapstructure:"max_capital_fraction"`

	MaxPortfolioVaRPct      float64 `mapstructure:"max_portfolio_var_pct"`
	MaxStrategyAllocPct     float64 `mapstructure:"max_strategy_alloc_pct"`
	MinDiversificationRatio float64 `mapstructure:"min_diversification_ratio"`
	MaxConcentrationScore   float64 `mapstructure:"max_concentration_score"`

	// Stress shock sizes are fixed business assumptions, kept configurable.
	CrashShockPct           float64 `mapstructure:"crash_shock_pct"`
	LiquidityShockPct       float64 `mapstructure:"liquidity_shock_pct"`
	FundingReversalShockPct float64 `mapstructure:"funding_reversal_shock_pct"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ARB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)

	v.SetDefault("db.enabled", false)
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")

	v.SetDefault("cron.enabled", true)
	v.SetDefault("cron.scan_spec", "@every 2m")

	v.SetDefault("binance.spot_base_url", "https://api.binance.com")
	v.SetDefault("binance.futures_base_url", "https://fapi.binance.com")
	v.SetDefault("binance.p2p_base_url", "https://p2p.binance.com")
	v.SetDefault("binance.timeout", "10s")

	v.SetDefault("stream.enabled", false)
	v.SetDefault("stream.url", "wss://stream.binance.com:9443/ws/!miniTicker@arr")
	v.SetDefault("stream.max_age", "10s")

	v.SetDefault("triangle.fiats", []string{"USD"})
	v.SetDefault("triangle.assets", []string{"USDT", "BTC", "ETH", "BNB"})
	v.SetDefault("triangle.spot_symbols", []string{
		"BTCUSDT", "ETHUSDT", "BNBUSDT", "ETHBTC", "BNBBTC", "BNBETH",
	})
	v.SetDefault("triangle.start_currency", "USD")
	v.SetDefault("triangle.max_steps", 4)
	v.SetDefault("triangle.min_roi_pct", 0.5)
	v.SetDefault("triangle.max_roi_pct", 10.0)
	v.SetDefault("triangle.amount_usd", 1000.0)

	v.SetDefault("statistical.pairs", []string{
		"BTCUSDT/ETHUSDT", "BNBUSDT/ETHUSDT", "SOLUSDT/AVAXUSDT",
	})
	v.SetDefault("statistical.lookback_days", 30)
	v.SetDefault("statistical.min_samples", 20)
	v.SetDefault("statistical.min_correlation", 0.7)
	v.SetDefault("statistical.max_coint_pvalue", 0.05)
	v.SetDefault("statistical.entry_z_score", 2.0)
	v.SetDefault("statistical.position_size_usd", 1000.0)
	v.SetDefault("statistical.max_position_size_usd", 10000.0)

	v.SetDefault("carry.symbols", []string{"BTCUSDT", "ETHUSDT", "BNBUSDT"})
	v.SetDefault("carry.min_basis_pct", 0.1)
	v.SetDefault("carry.max_basis_pct", 5.0)
	v.SetDefault("carry.funding_periods_per_day", 3)
	v.SetDefault("carry.holding_period_days", 7.0)
	v.SetDefault("carry.convergence_assumption", 0.5)
	v.SetDefault("carry.spot_fee_pct", 0.1)
	v.SetDefault("carry.futures_fee_pct", 0.04)
	v.SetDefault("carry.position_size_usd", 1000.0)
	v.SetDefault("carry.max_position_size_usd", 25000.0)

	v.SetDefault("scan.min_return_pct", 0.5)
	v.SetDefault("scan.max_risk_score", 70.0)
	v.SetDefault("scan.capital_usd", 10000.0)
	v.SetDefault("scan.max_positions", 5)
	v.SetDefault("scan.timeout", "30s")

	v.SetDefault("risk.base_volatility", map[string]float64{
		"FUNDING_RATE":  5.0,
		"STATISTICAL":   12.0,
		"DELTA_NEUTRAL": 8.0,
		"TRIANGLE":      15.0,
	})
	v.SetDefault("risk.default_correlation", 0.3)
	v.SetDefault("risk.target_volatility_pct", 10.0)
	v.SetDefault("risk.kelly_floor", 0.05)
	v.SetDefault("risk.kelly_cap", 0.25)
	v.SetDefault("risk.max_capital_fraction", 0.4)
	v.SetDefault("risk.max_portfolio_var_pct", 15.0)
	v.SetDefault("risk.max_strategy_alloc_pct", 60.0)
	v.SetDefault("risk.min_diversification_ratio", 1.05)
	v.SetDefault("risk.max_concentration_score", 80.0)
	v.SetDefault("risk.crash_shock_pct", 20.0)
	v.SetDefault("risk.liquidity_shock_pct", 5.0)
	v.SetDefault("risk.funding_reversal_shock_pct", 10.0)

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
