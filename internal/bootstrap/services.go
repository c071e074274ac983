package bootstrap

import (
	"database/sql"
	"errors"
	"log"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/redis/go-redis/v9"

	"github.com/unicoop/convenios-backend/config"
	activityrepo "github.com/unicoop/convenios-backend/internal/activity/repository"
	activitysvc "github.com/unicoop/convenios-backend/internal/activity/service"
	authrepo "github.com/unicoop/convenios-backend/internal/auth/repository"
	authsvc "github.com/unicoop/convenios-backend/internal/auth/service"
	convrepo "github.com/unicoop/convenios-backend/internal/convenios/repository"
	convsvc "github.com/unicoop/convenios-backend/internal/convenios/service"
	"github.com/unicoop/convenios-backend/internal/documents/assembler"
	docsvc "github.com/unicoop/convenios-backend/internal/documents/service"
	"github.com/unicoop/convenios-backend/internal/mailer"
	notifrepo "github.com/unicoop/convenios-backend/internal/notifications/repository"
	notifsvc "github.com/unicoop/convenios-backend/internal/notifications/service"
	"github.com/unicoop/convenios-backend/internal/reminders"
	"github.com/unicoop/convenios-backend/internal/storage/drive"
)

// Services holds every wired service. The API and the worker share it.
type Services struct {
	Auth       *authsvc.AuthService
	Convenios  *convsvc.ConvenioService
	Workflow   *convsvc.WorkflowService
	Migrations *convsvc.MigrationService
	Documents  *docsvc.Generator
	Notifier   *notifsvc.Notifier
	OAuth      *drive.OAuthService
	Reminders  *reminders.Job
}

func NewServices(cfg *config.Config, db *sql.DB, rdb *redis.Client, fb *fbauth.Client) *Services {
	profiles := authrepo.NewProfileRepository(db)
	authService := authsvc.NewAuthService(fb, fb, profiles)

	convenios := convrepo.NewConvenioRepository(db)
	types := convrepo.NewTypeRepository(db)
	observations := convrepo.NewObservationRepository(db)
	typeCache := convrepo.NewTypeCache(rdb, time.Hour)

	activity := activitysvc.NewRecorder(activityrepo.NewActivityRepository(db))

	var sender mailer.Sender
	if smtp, err := mailer.NewSMTPSender(cfg.Mail); err == nil {
		sender = smtp
	} else if !errors.Is(err, mailer.ErrNotConfigured) {
		log.Printf("Warning: mailer disabled: %v", err)
	}
	notifier := notifsvc.NewNotifier(notifrepo.NewNotificationRepository(db), sender, authService, cfg.Server.AppBaseURL)

	oauth := drive.NewOAuthService(
		drive.NewOAuthConfig(cfg.Drive),
		drive.NewStateStore(rdb, 10*time.Minute),
		drive.NewTokenRepository(db),
	)
	placer := drive.NewPlacer(drive.NewAccountClients(oauth, cfg.Drive.RequestsPerSecond), cfg.Drive)

	docs := assembler.New(assembler.DirSource{Dir: cfg.Templates.Dir})

	return &Services{
		Auth:       authService,
		Convenios:  convsvc.NewConvenioService(convenios, types, typeCache, observations, activity),
		Workflow:   convsvc.NewWorkflowService(convenios, types, observations, activity, placer, notifier, authService),
		Migrations: convsvc.NewMigrationService(convenios, activity),
		Documents:  docsvc.NewGenerator(convenios, types, docs, placer, activity, notifier),
		Notifier:   notifier,
		OAuth:      oauth,
		Reminders:  reminders.NewJob(convenios, notifier, cfg.Reminders.StaleDays),
	}
}
