package main

import (
	"os"
	"os/signal"
	"syscall"

	"attendance-station/internal/auth"
	"attendance-station/internal/camera"
	"attendance-station/internal/config"
	"attendance-station/internal/face"
	"attendance-station/internal/identify"
	"attendance-station/internal/ledger"
	"attendance-station/internal/notify"
	"attendance-station/internal/repository"
	"attendance-station/internal/sensor"
	"attendance-station/internal/server"
	"attendance-station/internal/settings"
	"attendance-station/internal/vision"
	"attendance-station/pkg/clock"
	"attendance-station/pkg/telegram"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func main() {
	logrus.Info("Initializing config...")
	cfg := config.GetStationConfig()
	logrus.Info("Config initialized...")

	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true, // SQLite limitation
	})
	if err != nil {
		logrus.Fatal("Failed to connect to database:", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		logrus.Fatal("Failed to get database instance:", err)
	}

	if _, err := sqlDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		logrus.Infof("Warning: Failed to enable foreign keys: %v", err)
	}

	// Old installs stored one timestamp per attendance row.
	if err := repository.MigrateLegacyAttendance(db, logrus.StandardLogger()); err != nil {
		logrus.WithError(err).Fatal("Failed to migrate legacy attendance table")
	}

	employeeRepo, err := repository.NewGormEmployeeRepository(db)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create employee repository")
	}

	attendanceRepo, err := repository.NewGormAttendanceRepository(db)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create attendance repository")
	}

	settingRepo, err := repository.NewGormSettingRepository(db)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create setting repository")
	}

	userRepo, err := repository.NewGormUserRepository(db)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create user repository")
	}

	settingsService := settings.NewService(settingRepo)
	attendanceLedger := ledger.New(attendanceRepo, clock.System())

	authService := auth.NewService(userRepo, []byte(cfg.JWTSecret))
	if err := authService.EnsureDefaultAdmin(); err != nil {
		logrus.WithError(err).Fatal("Failed to seed admin account")
	}

	notifiers := buildNotifiers(cfg, settingsService)

	var images *face.DirImageStore
	if vision.Active() != nil {
		images, err = face.NewDirImageStore(cfg.FacesDir)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to create face image store")
		}
	} else {
		logrus.Info("No vision engine registered; face modes disabled")
	}

	buildCoordinator := func(snapshot settings.Snapshot) *identify.Coordinator {
		var matcher *face.Matcher
		cam := camera.Unconfigured()
		if engine := vision.Active(); engine != nil {
			m, err := face.NewMatcher(face.Deps{
				Detector:  engine.Detector,
				Encoder:   engine.Encoder,
				Extractor: engine.Extractor,
				Images:    images,
			}, matcherConfig(snapshot))
			if err != nil {
				logrus.WithError(err).Error("Failed to build face matcher; face modes disabled")
			} else {
				matcher = m
			}
			if engine.Camera != nil {
				cam = engine.Camera
			}
		}

		return identify.NewCoordinator(identify.Deps{
			Employees: employeeRepo,
			Ledger:    attendanceLedger,
			Matcher:   matcher,
			Scanner:   sensor.Configured(),
			Camera:    cam,
			Notifiers: notifiers,
		}, snapshot)
	}

	app := server.NewApp(&server.App{
		Auth:             authService,
		Ledger:           attendanceLedger,
		Employees:        employeeRepo,
		Settings:         settingsService,
		Secret:           []byte(cfg.JWTSecret),
		BuildCoordinator: buildCoordinator,
	})

	router := server.NewRouter(app)

	go func() {
		logrus.Infof("Station API listening on %s", cfg.ListenAddr)
		if err := router.Run(cfg.ListenAddr); err != nil {
			logrus.Fatal("Server stopped:", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	logrus.Info("Station started. Press Ctrl+C to stop.")
	<-stop

	if err := sqlDB.Close(); err != nil {
		logrus.Infof("Error closing database: %v", err)
	}

	logrus.Info("Station stopped gracefully")
}

func buildNotifiers(cfg *config.StationConfig, settingsService *settings.Service) []notify.Notifier {
	notifiers := []notify.Notifier{
		notify.NewEmailNotifier(settingsService),
		notify.NewSimulatedUploader(),
	}

	if cfg.TelegramToken != "" && cfg.TelegramChatID != 0 {
		client, err := telegram.NewClient(cfg.TelegramToken)
		if err != nil {
			logrus.WithError(err).Warn("Failed to create Telegram client; telegram notifications disabled")
		} else {
			notifiers = append(notifiers, notify.NewTelegramNotifier(client, cfg.TelegramChatID))
			logrus.Infof("Telegram notifications enabled for chat %d", cfg.TelegramChatID)
		}
	}

	return notifiers
}

func matcherConfig(snapshot settings.Snapshot) face.Config {
	return face.Config{
		DistanceThreshold: snapshot.DistanceThreshold,
		MatchThreshold:    snapshot.MatchThreshold,
		BrightnessMin:     snapshot.BrightnessMin,
		BrightnessMax:     snapshot.BrightnessMax,
		MinSharpness:      snapshot.MinSharpness,
		RequireSingleFace: snapshot.RequireSingleFace,
	}
}
