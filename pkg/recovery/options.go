package recovery

import "time"

// Option configures a Service.
type Option func(*Service)

// WithOptionName sets the store name holding the record set.
func WithOptionName(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.optionName = name
		}
	}
}

// WithTokenLength sets the length of generated tokens.
func WithTokenLength(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.tokenLength = n
		}
	}
}

// WithKeyLength sets the length of generated keys. Values above MaxKeyLength
// are ignored because bcrypt rejects longer secrets.
func WithKeyLength(n int) Option {
	return func(s *Service) {
		if n > 0 && n <= MaxKeyLength {
			s.keyLength = n
		}
	}
}

// WithCharset sets the alphabet for tokens and keys. It must hold between 2
// and 256 characters; anything else is ignored.
func WithCharset(chars []byte) Option {
	return func(s *Service) {
		if len(chars) >= 2 && len(chars) <= 256 {
			s.charset = append([]byte(nil), chars...)
		}
	}
}

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithObserver registers observers at construction time. They cannot be
// removed later; use Observe for that.
func WithObserver(obs ...KeyObserver) Option {
	return func(s *Service) {
		for _, o := range obs {
			if o != nil {
				s.observers.add(o)
			}
		}
	}
}
