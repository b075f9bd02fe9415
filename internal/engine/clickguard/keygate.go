package clickguard

// KeyGate Отсекает автоповтор удерживаемой клавиши.
// Состояние "спам" снимается только отпусканием клавиши.
type KeyGate struct {
	spamming bool
	held     bool
}

// KeyDown Возвращает true, если нажатие можно передавать дальше
func (k *KeyGate) KeyDown(repeat bool) bool {
	if repeat || k.held {
		k.spamming = true
		return false
	}
	if k.spamming {
		return false
	}
	k.held = true
	return true
}

// KeyUp Отпускание клавиши
func (k *KeyGate) KeyUp() {
	k.held = false
	k.spamming = false
}

// Spamming Удерживается ли клавиша с автоповтором
func (k *KeyGate) Spamming() bool {
	return k.spamming
}

func (k *KeyGate) Reset() {
	k.held = false
	k.spamming = false
}
