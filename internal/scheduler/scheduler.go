// Package scheduler запускает периодические задачи сервера.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// jobTimeout Ограничение времени одного запуска задачи
const jobTimeout = 30 * time.Second

type Scheduler struct {
	sched  gocron.Scheduler
	logger *zap.Logger
}

// New Планировщик на переданных часах
func New(clock clockwork.Clock, logger *zap.Logger) (*Scheduler, error) {
	sched, err := gocron.NewScheduler(
		gocron.WithClock(clock),
		gocron.WithLogger(zapLogger{logger.Sugar()}),
	)
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	return &Scheduler{sched: sched, logger: logger}, nil
}

// Every Регистрирует задачу с фиксированным интервалом.
// Новый запуск не начинается, пока не закончен предыдущий
func (s *Scheduler) Every(name string, interval time.Duration, fn func(ctx context.Context) error) error {
	_, err := s.sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			defer cancel()

			if err := fn(ctx); err != nil {
				s.logger.Error("scheduled job failed", zap.String("job", name), zap.Error(err))
				return
			}
			s.logger.Debug("scheduled job done", zap.String("job", name))
		}),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("register job %s: %w", name, err)
	}
	return nil
}

// Jobs Имена зарегистрированных задач
func (s *Scheduler) Jobs() []string {
	jobs := s.sched.Jobs()
	names := make([]string, 0, len(jobs))
	for _, j := range jobs {
		names = append(names, j.Name())
	}
	return names
}

func (s *Scheduler) Start() {
	s.sched.Start()
}

func (s *Scheduler) Shutdown() error {
	return s.sched.Shutdown()
}

// zapLogger Адаптер zap для логгера gocron
type zapLogger struct {
	s *zap.SugaredLogger
}

func (l zapLogger) Debug(msg string, args ...any) { l.s.Debugw(msg, args...) }
func (l zapLogger) Error(msg string, args ...any) { l.s.Errorw(msg, args...) }
func (l zapLogger) Info(msg string, args ...any)  { l.s.Infow(msg, args...) }
func (l zapLogger) Warn(msg string, args ...any)  { l.s.Warnw(msg, args...) }
