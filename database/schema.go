package database

import (
	"gorm.io/gorm"

	"github.com/alanaraujo-bit/Absolut-Poker-club-sub000/models"
	"github.com/alanaraujo-bit/Absolut-Poker-club-sub000/utils"
)

// EnsureSchema migra as tabelas e confere o índice que sustenta a regra
// "uma comanda aberta por cliente". A regra vive no banco, não em
// consulta-e-insere: duas aberturas concorrentes para o mesmo cliente
// nunca passam as duas.
func EnsureSchema(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.Product{},
		&models.Tab{},
		&models.TabItem{},
		&models.StockMovement{},
	); err != nil {
		return err
	}

	if !db.Migrator().HasIndex(&models.Tab{}, "idx_comanda_aberta_por_cliente") {
		utils.ErrorLogger.Printf("Índice idx_comanda_aberta_por_cliente ausente após migração")
		if err := db.Migrator().CreateIndex(&models.Tab{}, "OpenCustomerKey"); err != nil {
			return err
		}
	}

	utils.InfoLogger.Println("Migração de schema concluída")
	return nil
}
