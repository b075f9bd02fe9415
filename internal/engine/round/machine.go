// Package round ведет жизненный цикл раунда:
// instructions -> countdown -> playing -> result -> instructions | blocked.
package round

import (
	"errors"
	"math"
	"sync"
	"time"

	"powerrush_backend/internal/engine/clickguard"
	"powerrush_backend/internal/engine/difficulty"
	"powerrush_backend/internal/engine/sampler"
	"powerrush_backend/internal/model"

	"github.com/jonboulle/clockwork"
)

type State string

const (
	StateInstructions State = "instructions"
	StateCountdown    State = "countdown"
	StatePlaying      State = "playing"
	StateResult       State = "result"
	StateBlocked      State = "blocked"
)

const (
	CountdownSeconds        = 3
	ContinueCooldownSeconds = 7

	tick = time.Second
	// Пока цель не достигнута, батарея не показывает 100%
	maxProgressBeforeWin = 99.0
)

var (
	ErrWrongState    = errors.New("action is not allowed in current state")
	ErrNotEligible   = errors.New("device is not eligible to play")
	ErrNoPrizes      = errors.New("no prizes left")
	ErrClosed        = errors.New("outside operating hours")
	ErrCooldown      = errors.New("continue is not available yet")
	ErrStillBlocked  = errors.New("blocking condition still holds")
	ErrInputRejected = errors.New("input rejected")
)

// Outcome Итог завершенного раунда, передается хосту для записи
type Outcome struct {
	DeviceID        string
	PlayerName      string
	Result          model.GameResult
	BatteryLevel    int
	DurationSeconds int
	RequiredClicks  int
	Taps            int
	FinishedAt      time.Time
}

// Recorder Сохраняет итог раунда. Для выигрыша возвращает номер приза, если он выдан.
// Record вызывается под мьютексом машины, Tap и State этого устройства ждут его завершения.
type Recorder interface {
	Record(o Outcome) *int
}

// Snapshot Состояние раунда для отображения
type Snapshot struct {
	State          State
	DeviceID       string
	PlayerName     string
	Countdown      int
	TimeLeft       int
	Taps           int
	RequiredClicks int
	Battery        float64
	Difficulty     float64
	ContinueIn     int
	CanContinue    bool
	Won            bool
	PrizeNumber    *int
	BlockReason    string
	PenalizedUntil time.Time
	Spamming       bool
	StartedAt      time.Time
	UpdatedAt      time.Time
}

// TapResult Итог одного нажатия
type TapResult struct {
	Click    clickguard.Result
	Snapshot Snapshot
}

// Machine Раунды одного устройства.
// Все переходы выполняются под мьютексом, таймер принадлежит текущему состоянию
// и останавливается при любом переходе. Поздний вызов таймера сверяет epoch.
type Machine struct {
	mu       sync.Mutex
	clock    clockwork.Clock
	src      sampler.Source
	recorder Recorder
	deviceID string

	state State
	epoch uint64
	timer clockwork.Timer

	settings     model.Settings
	playerName   string
	plan         difficulty.Outcome
	taps         int
	battery      float64
	countdown    int
	timeLeft     int
	continueLeft int
	startedAt    time.Time
	lastWin      time.Time
	won          bool
	prizeNumber  *int
	blockReason  string
	updatedAt    time.Time

	guard *clickguard.Guard
	keys  clickguard.KeyGate
}

// NewMachine Создает машину в состоянии instructions
func NewMachine(deviceID string, clock clockwork.Clock, src sampler.Source, recorder Recorder) *Machine {
	return &Machine{
		clock:     clock,
		src:       src,
		recorder:  recorder,
		deviceID:  deviceID,
		state:     StateInstructions,
		guard:     clickguard.New(),
		updatedAt: clock.Now(),
	}
}

// Start Запуск раунда: проверки допуска, расчет цели, обратный отсчет.
// Настройки и допуск передает хост, машина их не хранит между раундами.
func (m *Machine) Start(s model.Settings, elig model.Eligibility) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateInstructions {
		return m.snapshot(), ErrWrongState
	}
	now := m.clock.Now()

	if !elig.CanPlay {
		m.block(elig.Reason)
		return m.snapshot(), ErrNotEligible
	}
	if s.RemainingPrizes <= 0 {
		return m.snapshot(), ErrNoPrizes
	}
	if !s.OperatingHours.IsOpen(now) {
		return m.snapshot(), ErrClosed
	}

	m.resetRound()
	m.settings = s
	m.startedAt = now
	m.playerName = PlayerName(s.UniqueNames, m.src)
	m.plan = difficulty.Compute(s, m.lastWin, now, m.src)

	m.transition(StateCountdown)
	m.countdown = CountdownSeconds
	m.schedule(m.countdownTick)

	return m.snapshot(), nil
}

// Tap Нажатие (клик или тач)
func (m *Machine) Tap() (TapResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tap()
}

// KeyDown Нажатие клавиши. Автоповтор переводит ввод в режим спама до KeyUp.
func (m *Machine) KeyDown(repeat bool) (TapResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StatePlaying {
		return TapResult{Snapshot: m.snapshot()}, ErrWrongState
	}
	if !m.keys.KeyDown(repeat) {
		return TapResult{Snapshot: m.snapshot()}, ErrInputRejected
	}
	return m.tap()
}

// KeyUp Отпускание клавиши
func (m *Machine) KeyUp() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys.KeyUp()
	return m.snapshot()
}

// Continue Переход из result к новому раунду после паузы
func (m *Machine) Continue(elig model.Eligibility) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateResult {
		return m.snapshot(), ErrWrongState
	}
	if m.continueLeft > 0 {
		return m.snapshot(), ErrCooldown
	}
	if !elig.CanPlay {
		m.block(elig.Reason)
		return m.snapshot(), nil
	}
	m.transition(StateInstructions)
	m.resetRound()
	return m.snapshot(), nil
}

// Retry Повторная проверка блокировки
func (m *Machine) Retry(elig model.Eligibility) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateBlocked {
		return m.snapshot(), ErrWrongState
	}
	if !elig.CanPlay {
		m.blockReason = elig.Reason
		return m.snapshot(), ErrStillBlocked
	}
	m.transition(StateInstructions)
	m.resetRound()
	return m.snapshot(), nil
}

// Abort Сбрасывает машину в instructions без записи итога
func (m *Machine) Abort() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transition(StateInstructions)
	m.resetRound()
	return m.snapshot()
}

// Stop Останавливает таймеры, машина больше не используется
func (m *Machine) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelTimer()
	m.epoch++
}

func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot()
}

// StopIfIdle Останавливает машину, если раунд не идет и она простаивает не меньше idle.
// Проверка и остановка выполняются под одной блокировкой.
func (m *Machine) StopIfIdle(idle time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.state {
	case StateCountdown, StatePlaying:
		return false
	}
	if m.clock.Since(m.updatedAt) < idle {
		return false
	}
	m.cancelTimer()
	m.epoch++
	return true
}

// State Текущее состояние
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Machine) tap() (TapResult, error) {
	if m.state != StatePlaying {
		return TapResult{Snapshot: m.snapshot()}, ErrWrongState
	}
	now := m.clock.Now()

	click := m.guard.Register(now)
	if !click.Accepted {
		m.touch()
		return TapResult{Click: click, Snapshot: m.snapshot()}, nil
	}

	m.taps++
	m.battery = math.Min(maxProgressBeforeWin, Progress(m.taps, m.plan.Required, difficulty.Effective(m.settings, now)))

	// Выигрыш проверяется сразу, раньше истечения таймера
	if m.taps >= m.plan.Required && m.timeLeft > 0 {
		m.battery = 100
		m.lastWin = now
		m.finish(model.ResultWin, now)
	}
	m.touch()
	return TapResult{Click: click, Snapshot: m.snapshot()}, nil
}

func (m *Machine) countdownTick() {
	m.countdown--
	if m.countdown > 0 {
		m.schedule(m.countdownTick)
		return
	}
	m.transition(StatePlaying)
	m.timeLeft = m.settings.Duration
	m.schedule(m.playingTick)
}

func (m *Machine) playingTick() {
	m.timeLeft--
	if m.timeLeft > 0 {
		m.schedule(m.playingTick)
		return
	}
	m.timeLeft = 0
	m.finish(model.ResultLoss, m.clock.Now())
}

func (m *Machine) continueTick() {
	m.continueLeft--
	if m.continueLeft > 0 {
		m.schedule(m.continueTick)
	}
}

// finish Фиксирует итог и переводит в result
func (m *Machine) finish(result model.GameResult, now time.Time) {
	m.won = result == model.ResultWin
	m.transition(StateResult)

	outcome := Outcome{
		DeviceID:        m.deviceID,
		PlayerName:      m.playerName,
		Result:          result,
		BatteryLevel:    int(math.Round(m.battery)),
		DurationSeconds: int(math.Round(now.Sub(m.startedAt).Seconds())),
		RequiredClicks:  m.plan.Required,
		Taps:            m.taps,
		FinishedAt:      now,
	}
	if m.recorder != nil {
		m.prizeNumber = m.recorder.Record(outcome)
	}
	if !m.won {
		m.prizeNumber = nil
	}

	m.continueLeft = ContinueCooldownSeconds
	m.schedule(m.continueTick)
}

func (m *Machine) block(reason string) {
	m.transition(StateBlocked)
	m.blockReason = reason
}

// transition Отменяет таймер уходящего состояния и меняет epoch
func (m *Machine) transition(next State) {
	m.cancelTimer()
	m.epoch++
	m.state = next
	m.touch()
}

// schedule Ставит таймер на секунду вперед для текущего состояния
func (m *Machine) schedule(fn func()) {
	epoch := m.epoch
	m.timer = m.clock.AfterFunc(tick, func() {
		m.fire(epoch, fn)
	})
}

// fire Вызов таймера. Устаревший epoch означает, что состояние уже сменилось.
func (m *Machine) fire(epoch uint64, fn func()) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if epoch != m.epoch {
		return false
	}
	fn()
	m.touch()
	return true
}

func (m *Machine) cancelTimer() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

func (m *Machine) resetRound() {
	m.playerName = ""
	m.plan = difficulty.Outcome{}
	m.taps = 0
	m.battery = 0
	m.countdown = 0
	m.timeLeft = 0
	m.continueLeft = 0
	m.startedAt = time.Time{}
	m.won = false
	m.prizeNumber = nil
	m.blockReason = ""
	m.guard.Reset()
	m.keys.Reset()
}

func (m *Machine) touch() {
	m.updatedAt = m.clock.Now()
}

func (m *Machine) snapshot() Snapshot {
	return Snapshot{
		State:          m.state,
		DeviceID:       m.deviceID,
		PlayerName:     m.playerName,
		Countdown:      m.countdown,
		TimeLeft:       m.timeLeft,
		Taps:           m.taps,
		RequiredClicks: m.plan.Required,
		Battery:        m.battery,
		Difficulty:     m.plan.Difficulty,
		ContinueIn:     m.continueLeft,
		CanContinue:    m.state == StateResult && m.continueLeft == 0,
		Won:            m.won,
		PrizeNumber:    m.prizeNumber,
		BlockReason:    m.blockReason,
		PenalizedUntil: m.guard.PenaltyEnd(),
		Spamming:       m.keys.Spamming(),
		StartedAt:      m.startedAt,
		UpdatedAt:      m.updatedAt,
	}
}
