package sessions

// MemoryStore keeps the session for the lifetime of the process only.
type MemoryStore struct {
	state
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// NewMemoryStoreWith starts from an existing session, mostly useful in tests.
func NewMemoryStoreWith(s Session) *MemoryStore {
	m := &MemoryStore{}
	m.session = s.clone()
	return m
}
