// seed inserts development sample data and prints a session token per dev user.
// Idempotent: inserts are skipped when the dev admin already exists; tokens are always printed
// when SESSION_PRIVATE_KEY is set.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	claimdomain "github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/claim/domain"
	claimrepo "github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/claim/repository"
	clientdomain "github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/client/domain"
	clientrepo "github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/client/repository"
	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/config"
	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/db"
	membershipdomain "github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/membership/domain"
	membershiprepo "github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/membership/repository"
	orgdomain "github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/organization/domain"
	orgrepo "github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/organization/repository"
	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/security"
	userdomain "github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/user/domain"
	userrepo "github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/user/repository"
)

const (
	devOrgID      = "dev-org-001"
	devOtherOrgID = "dev-org-002"
	devClaimID    = "dev-claim-001"
	devClaim2ID   = "dev-claim-002"
	devClientID   = "dev-client-001"
)

type devUser struct {
	id       string
	email    string
	name     string
	userType string
	orgID    string
	role     membershipdomain.Role
}

var devUsers = []devUser{
	{"dev-admin-001", "admin@example.com", "Dev Admin", "pro", devOrgID, membershipdomain.RoleAdmin},
	{"dev-manager-001", "manager@example.com", "Dev Manager", "pro", devOrgID, membershipdomain.RoleManager},
	{"dev-member-001", "member@example.com", "Dev Member", "pro", devOrgID, membershipdomain.RoleMember},
	{"dev-other-001", "other@example.com", "Other Org Admin", "pro", devOtherOrgID, membershipdomain.RoleAdmin},
	{"dev-home-001", "home@example.com", "Homeowner", "client", "", ""},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	ctx := context.Background()
	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	users := userrepo.NewPostgresRepository(conn)
	existing, err := users.GetByID(ctx, devUsers[0].id)
	if err != nil {
		log.Fatalf("seed check: %v", err)
	}
	if existing != nil {
		log.Printf("Seed already applied (%s exists). Skipping inserts.", devUsers[0].email)
	} else if err := seed(ctx, conn); err != nil {
		log.Fatalf("seed: %v", err)
	} else {
		log.Println("Seed applied.")
	}

	printTokens(cfg)
}

func seed(ctx context.Context, conn *sql.DB) error {
	now := time.Now().UTC()
	users := userrepo.NewPostgresRepository(conn)
	orgs := orgrepo.NewPostgresRepository(conn)
	memberships := membershiprepo.NewPostgresRepository(conn)
	claims := claimrepo.NewPostgresRepository(conn)
	clients := clientrepo.NewPostgresRepository(conn)

	for _, o := range []*orgdomain.Org{
		{ID: devOrgID, Name: "Dev Roofing Co", Status: orgdomain.OrgStatusActive, CreatedAt: now},
		{ID: devOtherOrgID, Name: "Other Restoration", Status: orgdomain.OrgStatusActive, CreatedAt: now},
	} {
		if err := orgs.CreateOrganization(ctx, o); err != nil {
			return fmt.Errorf("create org %s: %w", o.ID, err)
		}
	}

	for i, u := range devUsers {
		if err := users.Create(ctx, &userdomain.User{ID: u.id, Email: u.email, Name: u.name, CreatedAt: now}); err != nil {
			return fmt.Errorf("create user %s: %w", u.email, err)
		}
		if u.orgID == "" {
			continue
		}
		m := &membershipdomain.Membership{
			ID:        uuid.New().String(),
			UserID:    u.id,
			OrgID:     u.orgID,
			Role:      u.role,
			CreatedAt: now.Add(time.Duration(i) * time.Millisecond),
		}
		if err := memberships.CreateMembership(ctx, m); err != nil {
			return fmt.Errorf("create membership %s: %w", u.email, err)
		}
	}

	for _, c := range []*claimdomain.Claim{
		{ID: devClaimID, OrgID: devOrgID, ClaimNumber: "CLM-1001", Carrier: "State Mutual", InsuredName: "Homeowner", Status: claimdomain.StatusInspection, LossDate: now.AddDate(0, 0, -14), CreatedAt: now},
		{ID: devClaim2ID, OrgID: devOrgID, ClaimNumber: "CLM-1002", Carrier: "Acme Insurance", InsuredName: "Neighbor", Status: claimdomain.StatusOpen, CreatedAt: now},
	} {
		if err := claims.Create(ctx, c); err != nil {
			return fmt.Errorf("create claim %s: %w", c.ClaimNumber, err)
		}
	}

	home := devUsers[len(devUsers)-1]
	if err := clients.CreateClient(ctx, &clientdomain.Client{ID: devClientID, UserID: home.id, Email: home.email, OrgID: devOrgID, CreatedAt: now}); err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	if err := clients.GrantClaimAccess(ctx, &clientdomain.ClaimAccess{ID: uuid.New().String(), Email: home.email, ClaimID: devClaimID, CreatedAt: now}); err != nil {
		return fmt.Errorf("grant claim access: %w", err)
	}
	return nil
}

func printTokens(cfg *config.Config) {
	if cfg.SessionPrivateKey == "" {
		log.Println("SESSION_PRIVATE_KEY not set; no dev tokens printed.")
		return
	}
	tokens, err := security.NewTokenProviderFromPEM(cfg.SessionPrivateKey, cfg.SessionPublicKey, cfg.SessionIssuer, cfg.SessionAudience, cfg.SessionLifetime())
	if err != nil {
		log.Fatalf("session key: %v", err)
	}
	for _, u := range devUsers {
		tok, exp, err := tokens.IssueSession(u.id, "dev-"+u.id, u.email, u.userType)
		if err != nil {
			log.Fatalf("issue token for %s: %v", u.email, err)
		}
		fmt.Printf("%-22s %-7s expires %s\n  %s\n", u.email, u.userType, exp.Format(time.RFC3339), tok)
	}
}
