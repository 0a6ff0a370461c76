// authd runs one directory authentication attempt against the configured
// targets and reconciles the local identity store. The login comes from
// -login; the secret is read from stdin so it never appears in process
// listings. Exits 0 when accepted, 1 when rejected or on a runtime failure,
// 2 on a usage or configuration error.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"ldap-identity-bridge/internal/config"
	"ldap-identity-bridge/internal/db"
	"ldap-identity-bridge/internal/directory"
	filerepo "ldap-identity-bridge/internal/file/repository"
	grouprepo "ldap-identity-bridge/internal/group/repository"
	"ldap-identity-bridge/internal/ldapauth/domain"
	"ldap-identity-bridge/internal/ldapauth/service"
	orgrepo "ldap-identity-bridge/internal/organization/repository"
	"ldap-identity-bridge/internal/security"
	otelsetup "ldap-identity-bridge/internal/telemetry/otel"
	userrepo "ldap-identity-bridge/internal/user/repository"
	fieldrepo "ldap-identity-bridge/internal/userfield/repository"
)

func main() {
	login := flag.String("login", "", "Login to authenticate")
	locale := flag.String("locale", "", "Locale for newly created users (overrides DEFAULT_LOCALE)")
	flag.Parse()

	if *login == "" {
		fmt.Fprintln(os.Stderr, "usage: authd -login <login> < secret-on-stdin")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
		os.Exit(2)
	}

	targets, err := config.LoadTargets(cfg.TargetsFile)
	if err != nil {
		log.Fatalf("targets: %v", err)
	}

	secret, err := readSecret(os.Stdin)
	if err != nil {
		log.Fatalf("reading secret: %v", err)
	}

	ctx := context.Background()

	providers, err := otelsetup.NewProviders(ctx, cfg.OTLPEndpoint, "ldap-identity-bridge", cfg.OTLPInsecure)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	providers.SetGlobal()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			log.Printf("telemetry shutdown: %v", err)
		}
	}()

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer database.Close()

	dialTimeout, err := time.ParseDuration(cfg.DialTimeout)
	if err != nil {
		log.Fatalf("LDAP_DIAL_TIMEOUT: %v", err)
	}

	svc := service.NewService(service.Deps{
		Dialer:          directory.NewLDAPDialer(dialTimeout),
		Users:           userrepo.NewPostgresRepository(database),
		Groups:          grouprepo.NewPostgresRepository(database),
		Orgs:            orgrepo.NewPostgresRepository(database),
		Fields:          fieldrepo.NewPostgresRepository(database),
		Files:           filerepo.NewPostgresRepository(database),
		Hasher:          security.NewHasher(cfg.BcryptCost),
		Targets:         targets,
		FallbackGroupID: cfg.FallbackGroupID,
		Logger:          slog.Default(),
		Emitter:         otelsetup.NewEventEmitter(providers.LoggerProvider),
	})

	userLocale := cfg.DefaultLocale
	if *locale != "" {
		userLocale = *locale
	}

	res, err := svc.Authenticate(ctx, domain.Credentials{Login: *login, Secret: secret}, userLocale)
	if err != nil {
		log.Fatalf("authenticate: %v", err)
	}
	if !res.Accepted {
		fmt.Println("rejected")
		os.Exit(1)
	}
	verb := "updated"
	if res.Created {
		verb = "created"
	}
	fmt.Printf("accepted: user %s %s via target %d\n", res.UserID, verb, res.TargetIndex)
}

// readSecret reads the first line from r, without the trailing newline.
func readSecret(r *os.File) (string, error) {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", fmt.Errorf("no secret on stdin")
	}
	return strings.TrimRight(scanner.Text(), "\r"), nil
}
