package session

import "time"

// activityDebounce is how long a burst of output keeps the activity flag
// raised before it may trigger again.
const activityDebounce = 500 * time.Millisecond

// SetMonitorActivity enables or disables activity monitoring: any child
// output raises the Activity notification, debounced by a short timer.
func (s *Session) SetMonitorActivity(on bool) {
	s.mu.Lock()
	s.monitorActivity = on
	if !on {
		s.setNotificationLocked(NotifyActivity, false)
	}
	s.mu.Unlock()
	s.drainPending()
}

// SetMonitorSilence enables or disables silence monitoring: no output for
// the configured threshold raises the Silence notification.
func (s *Session) SetMonitorSilence(on bool) {
	s.mu.Lock()
	s.monitorSilence = on
	if on {
		s.armSilenceTimerLocked()
	} else {
		if s.silenceTimer != nil {
			s.silenceTimer.Stop()
		}
		s.setNotificationLocked(NotifySilence, false)
	}
	s.mu.Unlock()
	s.drainPending()
}

// recordActivity is called on every chunk of child output: it raises the
// activity flag (debounced), clears the silence flag, and re-arms the
// silence timer.
func (s *Session) recordActivity() {
	s.mu.Lock()
	if s.monitorActivity {
		s.setNotificationLocked(NotifyActivity, true)
		if s.activityTimer == nil {
			s.activityTimer = time.AfterFunc(activityDebounce, s.activityLapsed)
		} else {
			s.activityTimer.Reset(activityDebounce)
		}
	}
	if s.monitorSilence {
		s.setNotificationLocked(NotifySilence, false)
		s.armSilenceTimerLocked()
	}
	s.mu.Unlock()
	s.drainPending()
}

func (s *Session) activityLapsed() {
	s.mu.Lock()
	s.setNotificationLocked(NotifyActivity, false)
	s.mu.Unlock()
	s.drainPending()
}

func (s *Session) armSilenceTimerLocked() {
	if s.silenceTimer == nil {
		s.silenceTimer = time.AfterFunc(s.cfg.SilenceThreshold, s.silenceLapsed)
	} else {
		s.silenceTimer.Reset(s.cfg.SilenceThreshold)
	}
}

func (s *Session) silenceLapsed() {
	s.mu.Lock()
	if s.monitorSilence {
		s.setNotificationLocked(NotifySilence, true)
	}
	s.mu.Unlock()
	s.drainPending()
}

// setNotificationLocked flips one flag and enqueues the change callback
// on edge transitions only.
func (s *Session) setNotificationLocked(kind NotificationKind, on bool) {
	if s.notifyFlags[kind] == on {
		return
	}
	s.notifyFlags[kind] = on
	if cb := s.OnNotificationsChanged; cb != nil {
		s.enqueue(func() { cb(kind, on) })
	}
}

// NotificationActive reports the current state of one notification flag.
func (s *Session) NotificationActive(kind NotificationKind) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notifyFlags[kind]
}

// ClearNotification lowers a flag, e.g. after the host has shown the
// bell to the user.
func (s *Session) ClearNotification(kind NotificationKind) {
	s.mu.Lock()
	s.setNotificationLocked(kind, false)
	s.mu.Unlock()
	s.drainPending()
}

func (s *Session) stopMonitorTimers() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activityTimer != nil {
		s.activityTimer.Stop()
	}
	if s.silenceTimer != nil {
		s.silenceTimer.Stop()
	}
}
