package storage

import "fmt"

// Open creates the backend named by storageType ("memory", "sqlite" or
// "postgresql").
func Open(storageType, path, url string) (Backend, error) {
	switch storageType {
	case "", "memory":
		return NewMemoryStorage(), nil
	case "sqlite":
		return NewSQLiteStorage(path)
	case "postgresql", "postgres":
		return NewPostgresStorage(url)
	default:
		return nil, fmt.Errorf("unknown storage type %q", storageType)
	}
}
