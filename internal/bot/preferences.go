package bot

import "sync"

// Preferences keeps the language each user picked with /language.
type Preferences struct {
	mu        sync.RWMutex
	languages map[int64]string
}

func NewPreferences() *Preferences {
	return &Preferences{languages: make(map[int64]string)}
}

// SetLanguage remembers the language for the user.
func (p *Preferences) SetLanguage(userID int64, lang string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.languages[userID] = lang
}

// Language returns the language the user picked, if any.
func (p *Preferences) Language(userID int64) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	lang, ok := p.languages[userID]
	return lang, ok
}
