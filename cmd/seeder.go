package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/saps-platform/case-management/internal/casefile"
	"github.com/saps-platform/case-management/internal/rbac"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		if clearData {
			for _, table := range []string{"activity_events", "reports", "cases", "users"} {
				if _, err := db.Exec("DELETE FROM " + table); err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

		officers := []struct {
			Email    string
			Name     string
			Role     rbac.Role
			Province string
			Station  string
			Badge    string
		}{
			{"constable@saps.gov.za", "Thabo Mokoena", rbac.RoleConstable, "Gauteng", "Johannesburg Central", "SAPS-10001"},
			{"detective@saps.gov.za", "Naledi Dlamini", rbac.RoleDetective, "Gauteng", "Johannesburg Central", "SAPS-10002"},
			{"commander@saps.gov.za", "Pieter van der Merwe", rbac.RoleStationCommander, "Gauteng", "Johannesburg Central", "SAPS-10003"},
			{"provincial@saps.gov.za", "Zanele Khumalo", rbac.RoleProvincialMinister, "Western Cape", "", ""},
			{"national@saps.gov.za", "Sipho Ndlovu", rbac.RoleNationalMinister, "Gauteng", "", ""},
		}

		for _, o := range officers {
			var exists int
			if err := db.QueryRow("SELECT 1 FROM users WHERE email = $1", o.Email).Scan(&exists); err == nil {
				fmt.Println("user already exists:", o.Email)
				continue
			}

			_, err := db.Exec(`INSERT INTO users
				(email, full_name, password_hash, saps_role, province, station, badge_number, profile_complete, is_active, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, true, true, now(), now())`,
				o.Email, o.Name, string(hash), string(o.Role), o.Province, o.Station, o.Badge)
			if err != nil {
				log.Fatalf("failed to insert user %s: %v", o.Email, err)
			}
			fmt.Println("Seeded user:", o.Email)
		}

		sampleCases := []struct {
			CrimeType string
			Province  string
			Priority  string
			Status    rbac.Status
			Desc      string
		}{
			{"Armed Robbery", "Gauteng", "High", rbac.StatusUnderInvestigation, "Armed robbery at a retail store on Commissioner Street."},
			{"House Burglary", "Gauteng", "Medium", rbac.StatusReported, "Break-in reported at a residence in Soweto."},
			{"Hijacking", "Western Cape", "Critical", rbac.StatusEvidenceCollection, "Vehicle hijacking on the N2 near Khayelitsha."},
			{"Murder", "KwaZulu-Natal", "Critical", rbac.StatusSuspectIdentified, "Homicide investigation in Durban CBD."},
			{"Stock Theft", "Free State", "Low", rbac.StatusSolved, "Livestock theft from a farm near Bethlehem."},
		}

		for _, sc := range sampleCases {
			caseNumber := casefile.NewCaseNumber()
			now := time.Now()

			history, _ := json.Marshal([]casefile.StatusEntry{{
				Status:    rbac.StatusReported,
				Date:      now,
				ChangedBy: "commander@saps.gov.za",
			}})

			_, err := db.Exec(`INSERT INTO cases
				(case_number, crime_type, province, incident_date, reported_date, priority, description, status, status_history, evidence_files, case_notes, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, '[]', '[]', now(), now())`,
				caseNumber, sc.CrimeType, sc.Province, now.AddDate(0, 0, -7), now,
				sc.Priority, sc.Desc, string(sc.Status), history)
			if err != nil {
				log.Fatalf("failed to insert case %s: %v", caseNumber, err)
			}
			fmt.Printf("Seeded case: %s (%s, %s)\n", caseNumber, sc.CrimeType, sc.Province)
		}

		fmt.Println("Sample data seeded successfully")
	},
}
