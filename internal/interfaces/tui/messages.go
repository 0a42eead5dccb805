package tui

import "time"

// drainInterval is how often the UI polls the message queue.
const drainInterval = 100 * time.Millisecond

// tickMsg drives the periodic queue drain.
type tickMsg time.Time
