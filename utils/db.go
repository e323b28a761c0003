package utils

import (
	"sync"

	"gorm.io/gorm"
)

var (
	db   *gorm.DB
	once sync.Once
	mu   sync.RWMutex
)

// InitDB guarda a conexão global (uma vez por processo).
func InitDB(database *gorm.DB) {
	once.Do(func() {
		db = database
	})
}

// GetDB devolve a conexão compartilhada.
func GetDB() *gorm.DB {
	mu.RLock()
	defer mu.RUnlock()
	return db
}
