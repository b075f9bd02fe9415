package session_repo

import (
	"sync"
	"time"

	"powerrush_backend/internal/engine/round"
)

// SessionRepo Хранилище раундов в памяти.
// Раунд живет только пока процесс запущен, в БД пишутся лишь итоги.
type SessionRepo struct {
	mtx      sync.RWMutex
	machines map[string]*round.Machine
}

// NewSessionRepository Конструктор пустого хранилища
func NewSessionRepository() *SessionRepo {
	return &SessionRepo{
		machines: make(map[string]*round.Machine),
	}
}

// GetOrCreate Возвращает раунд устройства, создавая его через create при первом обращении
func (r *SessionRepo) GetOrCreate(deviceID string, create func() *round.Machine) *round.Machine {
	r.mtx.RLock()
	m, ok := r.machines[deviceID]
	r.mtx.RUnlock()
	if ok {
		return m
	}

	r.mtx.Lock()
	defer r.mtx.Unlock()
	if m, ok = r.machines[deviceID]; ok {
		return m
	}
	m = create()
	r.machines[deviceID] = m
	return m
}

func (r *SessionRepo) Get(deviceID string) (*round.Machine, bool) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	m, ok := r.machines[deviceID]
	return m, ok
}

// Sweep Выгружает раунды, которые простаивают дольше idle и не идут прямо сейчас.
// Возвращает количество выгруженных
func (r *SessionRepo) Sweep(idle time.Duration) int {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	removed := 0
	for id, m := range r.machines {
		if !m.StopIfIdle(idle) {
			continue
		}
		delete(r.machines, id)
		removed++
	}
	return removed
}

func (r *SessionRepo) Len() int {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	return len(r.machines)
}

// StopAll Останавливает таймеры всех раундов, вызывается при завершении сервера
func (r *SessionRepo) StopAll() {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	for id, m := range r.machines {
		m.Stop()
		delete(r.machines, id)
	}
}
