package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	authdomain "github.com/verlyx/hub/internal/auth/domain"
	dealdomain "github.com/verlyx/hub/internal/deal/domain"
	documentdomain "github.com/verlyx/hub/internal/document/domain"
	financedomain "github.com/verlyx/hub/internal/finance/domain"
	mycompanydomain "github.com/verlyx/hub/internal/mycompany/domain"
	notificationdomain "github.com/verlyx/hub/internal/notification/domain"
	organizationdomain "github.com/verlyx/hub/internal/organization/domain"
	paymentdomain "github.com/verlyx/hub/internal/payment/domain"
	pdfgendomain "github.com/verlyx/hub/internal/pdfgen/domain"
	projectdomain "github.com/verlyx/hub/internal/project/domain"
	taskdomain "github.com/verlyx/hub/internal/task/domain"
	taskcommentdomain "github.com/verlyx/hub/internal/taskcomment/domain"
	workspacedomain "github.com/verlyx/hub/internal/workspace/domain"
	"gorm.io/gorm"
)

const migrationsDir = "migrations"

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// Models lists every table in dependency order. Dialects other than postgres
// get their schema from these through AutoMigrate.
func Models() []any {
	return []any{
		&authdomain.User{},
		&mycompanydomain.MyCompany{},
		&mycompanydomain.Member{},
		&dealdomain.Deal{},
		&organizationdomain.Organization{},
		&projectdomain.Project{},
		&taskdomain.Task{},
		&taskcommentdomain.Comment{},
		&documentdomain.Document{},
		&workspacedomain.Workspace{},
		&workspacedomain.Page{},
		&workspacedomain.Block{},
		&financedomain.Account{},
		&financedomain.Category{},
		&financedomain.Expense{},
		&financedomain.Income{},
		&financedomain.Budget{},
		&paymentdomain.PaymentLink{},
		&paymentdomain.Payment{},
		&notificationdomain.Notification{},
		&pdfgendomain.Template{},
		&pdfgendomain.GeneratedPDF{},
	}
}

// RunMigrations applies the embedded SQL files. The stored procedures the API
// calls by name are provisioned with the database and are not created here.
func RunMigrations(db *sql.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// Do not call migrator.Close here because it would close the shared *sql.DB.

	return nil
}

// AutoMigrate creates the schema from the gorm models.
func AutoMigrate(conn *gorm.DB) error {
	if conn == nil {
		return errors.New("migration database handle is required")
	}
	if err := conn.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
