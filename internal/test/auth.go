package test

// TokenParserStub resolves any token to the configured user or error.
type TokenParserStub struct {
	ID  int64
	Err error
}

// ParseToken returns the configured identity.
func (s TokenParserStub) ParseToken(string) (int64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	return s.ID, nil
}
