package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	Profile() ProfileRepository
	Plan() PlanRepository
	Chat() ChatRepository
	Memory() MemoryRepository

	// Close releases the underlying client
	Close() error
}
