package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Umairanwarr/hadith-sub001/config"
	"github.com/Umairanwarr/hadith-sub001/database"
	"github.com/Umairanwarr/hadith-sub001/routers"
	"github.com/Umairanwarr/hadith-sub001/services/scheduler"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()

	app := routers.NewApp(config.AppConfig)

	sweeper, err := scheduler.InitializeAttemptScheduler(database.Database.Db, config.AppConfig.AttemptSweepSpec)
	if err != nil {
		log.Fatalf("Failed to start attempt scheduler: %v", err)
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit

		log.Println("Shutting down...")
		<-sweeper.Stop().Done()
		if err := app.Shutdown(); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	}()

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	if err := app.Listen(":" + config.AppConfig.Port); err != nil {
		log.Fatal(err)
	}
}
