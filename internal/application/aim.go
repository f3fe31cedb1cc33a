package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"armor-aim/internal/domain/entity"
	"armor-aim/internal/domain/port"
)

// AimDeps зависимости конвейера. Classifier, Renderer и Observer необязательны.
type AimDeps struct {
	Source     port.FrameSource
	Detector   port.LightBarDetector
	Matcher    port.ArmorMatcher
	Pose       port.PoseResolver
	Classifier port.DigitClassifier
	Renderer   port.Renderer
	Observer   port.FrameObserver
	Logger     *zap.Logger
}

// AimService прогоняет кадры через сегментатор, сопоставитель, решатель позы
// и классификатор строго последовательно.
type AimService struct {
	deps AimDeps
	log  *zap.Logger

	mu       sync.RWMutex
	color    entity.EnemyColor
	last     *entity.FrameResult
	notifier port.Notifier
}

// RunStats итоги прогона видеопотока.
type RunStats struct {
	RunID    string
	Frames   int // обработано кадров
	Skipped  int // пропущено из-за ошибок детектора
	Armors   int
	Ranged   int // пластины с найденным расстоянием
	Digits   int // пластины с распознанной цифрой
	Stopped  bool
	Duration time.Duration
}

// Summary текст отчёта для оператора.
func (s RunStats) Summary() string {
	text := fmt.Sprintf(
		"Прогон %s завершён за %s\nКадров: %d (пропущено %d)\nПластин: %d, с расстоянием: %d, с цифрой: %d",
		s.RunID, s.Duration.Round(time.Millisecond), s.Frames, s.Skipped, s.Armors, s.Ranged, s.Digits,
	)
	if s.Stopped {
		text += "\nОстановлен оператором"
	}
	return text
}

// NewAimService создаёт сервис наведения.
func NewAimService(deps AimDeps, color entity.EnemyColor) (*AimService, error) {
	if deps.Source == nil || deps.Detector == nil || deps.Matcher == nil || deps.Pose == nil {
		return nil, errors.New("source, detector, matcher and pose are required")
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &AimService{deps: deps, log: log, color: color}, nil
}

// SetEnemyColor меняет цвет противника, начиная со следующего кадра.
func (s *AimService) SetEnemyColor(color entity.EnemyColor) {
	s.mu.Lock()
	s.color = color
	s.mu.Unlock()
}

// EnemyColor текущий цвет противника
func (s *AimService) EnemyColor() entity.EnemyColor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.color
}

// SetNotifier подключает канал для итогового отчёта.
func (s *AimService) SetNotifier(n port.Notifier) {
	s.mu.Lock()
	s.notifier = n
	s.mu.Unlock()
}

// LastResult последний обработанный кадр (nil до первого кадра).
func (s *AimService) LastResult() *entity.FrameResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// ProcessFrame обрабатывает один кадр. Ошибка возвращается только при сбое
// детектора; нехватка элементов или пар даёт пустой результат.
func (s *AimService) ProcessFrame(ctx context.Context, index int, frame port.Frame) (*entity.FrameResult, error) {
	start := time.Now()
	color := s.EnemyColor()

	bars, err := s.deps.Detector.Detect(frame, color)
	if err != nil {
		return nil, fmt.Errorf("detect light bars: %w", err)
	}

	armors := s.deps.Matcher.Match(bars)
	for i := range armors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s.resolve(index, &armors[i])
		s.classify(frame, index, &armors[i])
	}

	result := &entity.FrameResult{
		Index:     index,
		LightBars: bars,
		Armors:    armors,
		Elapsed:   time.Since(start),
	}

	s.mu.Lock()
	s.last = result
	s.mu.Unlock()

	if s.deps.Observer != nil {
		s.deps.Observer.Observe(result)
	}
	return result, nil
}

func (s *AimService) resolve(index int, armor *entity.Armor) {
	distance, err := s.deps.Pose.Resolve(*armor)
	if err != nil {
		s.log.Debug("pose not resolved",
			zap.Int("frame", index),
			zap.String("type", string(armor.Type)),
			zap.Error(err),
		)
		return
	}
	armor.Distance = distance
}

func (s *AimService) classify(frame port.Frame, index int, armor *entity.Armor) {
	if s.deps.Classifier == nil {
		return
	}
	digit, confidence, err := s.deps.Classifier.Classify(frame, *armor)
	if err != nil {
		s.log.Debug("digit classification failed", zap.Int("frame", index), zap.Error(err))
		armor.Digit = entity.DigitUnknown
		return
	}
	armor.Digit = digit
	s.log.Debug("digit",
		zap.Int("frame", index),
		zap.Stringer("digit", digit),
		zap.Float64("confidence", confidence),
	)
}

// Run читает кадры до конца потока, отмены контекста или команды оператора.
// Конец потока не считается ошибкой.
func (s *AimService) Run(ctx context.Context) (RunStats, error) {
	stats := RunStats{RunID: uuid.NewString()}
	log := s.log.With(zap.String("run_id", stats.RunID))
	start := time.Now()

	log.Info("aim loop started", zap.String("enemy_color", string(s.EnemyColor())))

	var runErr error
	for index := 0; ; index++ {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		frame, err := s.deps.Source.Next(ctx)
		if errors.Is(err, port.ErrEndOfStream) {
			break
		}
		if err != nil {
			runErr = fmt.Errorf("read frame %d: %w", index, err)
			break
		}

		quit, err := s.step(ctx, log, index, frame, &stats)
		if err != nil {
			runErr = err
			break
		}
		if quit {
			stats.Stopped = true
			break
		}
	}

	stats.Duration = time.Since(start)
	log.Info("aim loop finished",
		zap.Int("frames", stats.Frames),
		zap.Int("skipped", stats.Skipped),
		zap.Int("armors", stats.Armors),
		zap.Duration("duration", stats.Duration),
	)
	s.report(ctx, log, stats)
	return stats, runErr
}

// step обрабатывает и отображает один кадр, затем освобождает его.
func (s *AimService) step(ctx context.Context, log *zap.Logger, index int, frame port.Frame, stats *RunStats) (bool, error) {
	defer func() {
		if err := frame.Close(); err != nil {
			log.Warn("failed to release frame", zap.Int("frame", index), zap.Error(err))
		}
	}()

	result, err := s.ProcessFrame(ctx, index, frame)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, ctxErr
		}
		stats.Skipped++
		log.Warn("frame skipped", zap.Int("frame", index), zap.Error(err))
		return false, nil
	}

	stats.Frames++
	stats.Armors += len(result.Armors)
	for _, a := range result.Armors {
		if a.HasDistance() {
			stats.Ranged++
		}
		if a.Digit.Known() {
			stats.Digits++
		}
	}
	log.Debug("frame processed",
		zap.Int("frame", index),
		zap.Int("light_bars", len(result.LightBars)),
		zap.Int("armors", len(result.Armors)),
		zap.Duration("elapsed", result.Elapsed),
	)

	if s.deps.Renderer == nil {
		return false, nil
	}
	quit, err := s.deps.Renderer.Render(frame, result)
	if err != nil {
		log.Warn("render failed", zap.Int("frame", index), zap.Error(err))
	}
	return quit, nil
}

func (s *AimService) report(ctx context.Context, log *zap.Logger, stats RunStats) {
	s.mu.RLock()
	n := s.notifier
	s.mu.RUnlock()
	if n == nil {
		return
	}

	// отчёт отправляется и после отмены основного контекста
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := n.Notify(ctx, stats.Summary()); err != nil {
		log.Warn("failed to send run report", zap.Error(err))
	}
}
