package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"armor-aim/internal/domain/entity"
)

type Config struct {
	Video           string            // путь к видео или индекс камеры
	EnemyColor      entity.EnemyColor // начальный цвет противника
	CalibrationPath string
	ModelPath       string
	ParamsPath      string // необязательный YAML с порогами
	ShowWindow      bool
	LogMode         string // production | development
	MetricsAddr     string
	Assigner        string // greedy | exact
	TelegramToken   string
	Params          Params
}

// Params пороги конвейера, переопределяемые из YAML.
type Params struct {
	Detector   DetectorConfig   `yaml:"detector"`
	Matcher    MatcherConfig    `yaml:"matcher"`
	Pose       PoseConfig       `yaml:"pose"`
	Classifier ClassifierConfig `yaml:"classifier"`
}

// DetectorConfig пороги сегментатора световых элементов.
type DetectorConfig struct {
	ThresholdFloor   float64 `yaml:"threshold_floor"`    // нижняя граница порога Оцу
	DilateKernel     int     `yaml:"dilate_kernel"`      // сторона структурного элемента
	MinContourPoints int     `yaml:"min_contour_points"` // минимум точек контура
	MinArea          float64 `yaml:"min_area"`           // минимальная площадь, px²
	MinRatio         float64 `yaml:"min_ratio"`          // длина/ширина
	MaxRatio         float64 `yaml:"max_ratio"`
	MaxTilt          float64 `yaml:"max_tilt"` // наклон от вертикали, градусы (исключая)
}

// MatcherConfig пороги сопоставления пар.
type MatcherConfig struct {
	MaxAngleDiff   float64 `yaml:"max_angle_diff"`   // градусы
	MaxLengthRatio float64 `yaml:"max_length_ratio"` // длинный/короткий
	MaxYDiffRatio  float64 `yaml:"max_y_diff_ratio"` // доля средней длины
	SmallMinRatio  float64 `yaml:"small_min_ratio"`  // расстояние/длина
	SmallMaxRatio  float64 `yaml:"small_max_ratio"`
	LargeMaxRatio  float64 `yaml:"large_max_ratio"`
	ExactMaxBars   int     `yaml:"exact_max_bars"` // предел точного сопоставления
}

// PoseConfig модель пластины и параметры решателя позы.
type PoseConfig struct {
	SmallWidth           float64 `yaml:"small_width"` // мм
	LargeWidth           float64 `yaml:"large_width"` // мм
	Height               float64 `yaml:"height"`      // мм
	MaxIterations        int     `yaml:"max_iterations"`
	MaxReprojectionError float64 `yaml:"max_reprojection_error"` // px, RMS
}

// ClassifierConfig параметры внешнего классификатора цифр.
type ClassifierConfig struct {
	Threshold   float64  `yaml:"threshold"`
	Labels      []string `yaml:"labels"`
	WarpSize    int      `yaml:"warp_size"`
	CropX       int      `yaml:"crop_x"`
	CropWidth   int      `yaml:"crop_width"`
	InputWidth  int      `yaml:"input_width"`
	InputHeight int      `yaml:"input_height"`
}

// DefaultParams пороги по умолчанию.
func DefaultParams() Params {
	return Params{
		Detector: DetectorConfig{
			ThresholdFloor:   40,
			DilateKernel:     3,
			MinContourPoints: 6,
			MinArea:          20,
			MinRatio:         1.5,
			MaxRatio:         12,
			MaxTilt:          45,
		},
		Matcher: MatcherConfig{
			MaxAngleDiff:   10,
			MaxLengthRatio: 1.66,
			MaxYDiffRatio:  0.5,
			SmallMinRatio:  1.8,
			SmallMaxRatio:  3.2,
			LargeMaxRatio:  5.5,
			ExactMaxBars:   16,
		},
		Pose: PoseConfig{
			SmallWidth:           135,
			LargeWidth:           225,
			Height:               55,
			MaxIterations:        100,
			MaxReprojectionError: 5,
		},
		Classifier: ClassifierConfig{
			Threshold:   0.6,
			Labels:      append([]string(nil), entity.DefaultDigitLabels...),
			WarpSize:    50,
			CropX:       15,
			CropWidth:   20,
			InputWidth:  20,
			InputHeight: 40,
		},
	}
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	color, err := entity.ParseEnemyColor(getenv("AIM_ENEMY_COLOR", string(entity.EnemyRed)))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Video:           getenv("AIM_VIDEO", "0"),
		EnemyColor:      color,
		CalibrationPath: os.Getenv("AIM_CALIBRATION"),
		ModelPath:       os.Getenv("AIM_MODEL"),
		ParamsPath:      os.Getenv("AIM_PARAMS"),
		ShowWindow:      parseBool(os.Getenv("AIM_SHOW")),
		LogMode:         getenv("AIM_LOG_MODE", "production"),
		MetricsAddr:     os.Getenv("AIM_METRICS_ADDR"),
		Assigner:        getenv("AIM_ASSIGNER", "greedy"),
		TelegramToken:   os.Getenv("TELEGRAM_TOKEN"),
		Params:          DefaultParams(),
	}

	if cfg.ParamsPath != "" {
		params, err := LoadParams(cfg.ParamsPath)
		if err != nil {
			return nil, err
		}
		cfg.Params = *params
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadParams читает YAML поверх значений по умолчанию.
func LoadParams(path string) (*Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read params file: %w", err)
	}

	params := DefaultParams()
	if err := yaml.Unmarshal(data, &params); err != nil {
		return nil, fmt.Errorf("failed to parse params: %w", err)
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	return &params, nil
}

// Validate проверяет обязательные поля и согласованность порогов.
func (c *Config) Validate() error {
	if c.CalibrationPath == "" {
		return errors.New("AIM_CALIBRATION is required")
	}
	if c.ModelPath == "" {
		return errors.New("AIM_MODEL is required")
	}
	switch c.LogMode {
	case "production", "development":
	default:
		return fmt.Errorf("unknown log mode %q", c.LogMode)
	}
	switch c.Assigner {
	case "greedy", "exact":
	default:
		return fmt.Errorf("unknown assigner %q", c.Assigner)
	}
	return c.Params.Validate()
}

// Validate проверяет диапазоны порогов.
func (p Params) Validate() error {
	d := p.Detector
	if d.DilateKernel < 1 {
		return errors.New("detector.dilate_kernel must be >= 1")
	}
	if d.MinRatio <= 0 || d.MinRatio > d.MaxRatio {
		return fmt.Errorf("detector ratio band [%g, %g] is invalid", d.MinRatio, d.MaxRatio)
	}
	if d.MaxTilt <= 0 || d.MaxTilt > 90 {
		return fmt.Errorf("detector.max_tilt %g out of (0, 90]", d.MaxTilt)
	}

	m := p.Matcher
	if m.MaxAngleDiff <= 0 || m.MaxYDiffRatio <= 0 {
		return errors.New("matcher tolerances must be positive")
	}
	if m.MaxLengthRatio < 1 {
		return fmt.Errorf("matcher.max_length_ratio %g must be >= 1", m.MaxLengthRatio)
	}
	if !(m.SmallMinRatio < m.SmallMaxRatio && m.SmallMaxRatio < m.LargeMaxRatio) {
		return fmt.Errorf("matcher size bands must satisfy %g < %g < %g",
			m.SmallMinRatio, m.SmallMaxRatio, m.LargeMaxRatio)
	}
	if m.ExactMaxBars < 0 || m.ExactMaxBars > 20 {
		return fmt.Errorf("matcher.exact_max_bars %d out of [0, 20]", m.ExactMaxBars)
	}

	ps := p.Pose
	if ps.SmallWidth <= 0 || ps.LargeWidth <= 0 || ps.Height <= 0 {
		return errors.New("pose plate dimensions must be positive")
	}
	if ps.MaxReprojectionError <= 0 {
		return errors.New("pose.max_reprojection_error must be positive")
	}

	cl := p.Classifier
	if cl.Threshold < 0 || cl.Threshold > 1 {
		return fmt.Errorf("classifier.threshold %g out of [0, 1]", cl.Threshold)
	}
	if len(cl.Labels) == 0 {
		return errors.New("classifier.labels must not be empty")
	}
	if cl.WarpSize <= 0 || cl.CropWidth <= 0 || cl.InputWidth <= 0 || cl.InputHeight <= 0 {
		return errors.New("classifier sizes must be positive")
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBool(s string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(s))
	return err == nil && v
}
