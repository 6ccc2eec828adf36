package session

// OnVolumeInput registers fn to receive microphone input levels in dBFS
// while a recording with audio is running. A nil fn removes the handler.
func (m *Manager) OnVolumeInput(fn func(db float64)) {
	m.volumeMu.Lock()
	m.onVolume = fn
	m.volumeMu.Unlock()
}

func (m *Manager) emitVolume(db float64) {
	m.volumeMu.Lock()
	fn := m.onVolume
	m.volumeMu.Unlock()
	if fn != nil {
		fn(db)
	}
}
