package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/alanaraujo-bit/Absolut-Poker-club-sub000/config"
	"github.com/alanaraujo-bit/Absolut-Poker-club-sub000/database"
	"github.com/alanaraujo-bit/Absolut-Poker-club-sub000/router"
	"github.com/alanaraujo-bit/Absolut-Poker-club-sub000/services"
	"github.com/alanaraujo-bit/Absolut-Poker-club-sub000/utils"
)

func init() {
	// .env antes de qualquer coisa
	if err := godotenv.Load(); err != nil {
		log.Printf("Aviso: .env não encontrado: %v", err)
	}

	utils.InitLogger()
}

func main() {
	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Falha ao conectar no banco: %v", err)
	}

	// Conexão compartilhada para quem precisar fora dos controllers
	utils.InitDB(db)

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := database.EnsureSchema(db); err != nil {
		utils.ErrorLogger.Fatalf("Falha na migração do schema: %v", err)
	}

	// Config PIX é conferida no boot para o caixa não descobrir na hora
	if err := services.NewPixService().ValidateConfig(); err != nil {
		utils.InfoLogger.Printf("Aviso: cobrança PIX indisponível: %v", err)
	}

	r := router.SetupRouter(db)

	r.SetTrustedProxies([]string{"127.0.0.1", "localhost"})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	utils.InfoLogger.Printf("Servidor ouvindo na porta %s", port)
	if err := r.Run(":" + port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}
