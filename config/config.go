package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/adnavarro/rouletbot/internal/analyzer"
	"github.com/adnavarro/rouletbot/internal/risk"
)

// Config es la configuración completa del bot.
type Config struct {
	Analyzer AnalyzerConfig `yaml:"analyzer"`
	Session  SessionConfig  `yaml:"session"`
	Risk     risk.Params    `yaml:"risk"`
	Backtest BacktestConfig `yaml:"backtest"`
	Storage  StorageConfig  `yaml:"storage"`
	Log      LogConfig      `yaml:"log"`
}

// AnalyzerConfig controla los umbrales de los detectores.
type AnalyzerConfig struct {
	SectorMinShare   float64 `yaml:"sector_min_share"`   // % del sector dominante
	SectorAlpha      float64 `yaml:"sector_alpha"`       // significancia del test de sectores
	BiasAlpha        float64 `yaml:"bias_alpha"`         // significancia del test de bias
	BiasMinDeviation float64 `yaml:"bias_min_deviation"` // % de desvío para marcar un número
	ClusterMaxRatio  float64 `yaml:"cluster_max_ratio"`  // fracción de la distancia esperada
	TrendMinSlope    float64 `yaml:"trend_min_slope"`    // puntos de % por bloque
}

// SessionConfig controla la sesión en vivo.
type SessionConfig struct {
	Strategy              string  `yaml:"strategy"`                // streak_break | frequency_deviation | trend_follow | hybrid
	HistorySize           int     `yaml:"history_size"`            // registros precargados
	NotifyCooldownSeconds int     `yaml:"notify_cooldown_seconds"` // mínimo entre notificaciones
	BaseBet               float64 `yaml:"base_bet"`                // 0 activa Kelly
	StrategyRisk          float64 `yaml:"strategy_risk"`
}

// BacktestConfig controla las ejecuciones de backtest.
type BacktestConfig struct {
	InitialCapital float64 `yaml:"initial_capital"`
	BetAmount      float64 `yaml:"bet_amount"`
	MaxBets        int     `yaml:"max_bets"`
}

// StorageConfig controla dónde se persisten los datos.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del .env sobreescriben los del YAML para las keys que correspondan.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// NotifyCooldown devuelve el cooldown de notificaciones como time.Duration.
func (c *Config) NotifyCooldown() time.Duration {
	return time.Duration(c.Session.NotifyCooldownSeconds) * time.Second
}

// AnalyzerOptions traduce la sección analyzer a la config del paquete.
func (c *Config) AnalyzerOptions() analyzer.Config {
	return analyzer.Config{
		SectorMinShare:   c.Analyzer.SectorMinShare,
		SectorAlpha:      c.Analyzer.SectorAlpha,
		BiasAlpha:        c.Analyzer.BiasAlpha,
		BiasMinDeviation: c.Analyzer.BiasMinDeviation,
		ClusterMaxRatio:  c.Analyzer.ClusterMaxRatio,
		TrendMinSlope:    c.Analyzer.TrendMinSlope,
	}
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("ROULETBOT_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := os.Getenv("ROULETBOT_STRATEGY"); v != "" {
		cfg.Session.Strategy = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
// Los umbrales del analyzer y los parámetros de riesgo ya tienen defaulting
// propio en sus paquetes; aquí solo van los del resto de secciones.
func setDefaults(cfg *Config) {
	if cfg.Session.Strategy == "" {
		cfg.Session.Strategy = "streak_break"
	}
	if cfg.Session.HistorySize <= 0 {
		cfg.Session.HistorySize = 500
	}
	if cfg.Session.NotifyCooldownSeconds <= 0 {
		cfg.Session.NotifyCooldownSeconds = 60
	}
	if cfg.Session.StrategyRisk <= 0 {
		cfg.Session.StrategyRisk = 1.0
	}
	if cfg.Backtest.InitialCapital <= 0 {
		cfg.Backtest.InitialCapital = 1000
	}
	if cfg.Backtest.BetAmount <= 0 {
		cfg.Backtest.BetAmount = 1.0
	}
	if cfg.Backtest.MaxBets <= 0 {
		cfg.Backtest.MaxBets = 1000
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "rouletbot.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
