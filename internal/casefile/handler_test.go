package casefile_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/saps-platform/case-management/internal/auth"
	"github.com/saps-platform/case-management/internal/casefile"
	casefilePostgres "github.com/saps-platform/case-management/internal/casefile/postgres"
	casefileDatamodel "github.com/saps-platform/case-management/internal/core/datamodel/casefile"
	"github.com/saps-platform/case-management/internal/rbac"
	"github.com/saps-platform/case-management/internal/user"
)

// emptyUserRepo backs the officer directory with a store holding no rows, so
// every lookup reports the user as missing.
type emptyUserRepo struct{}

func (emptyUserRepo) GetByID(int64) (*user.User, error) { return nil, user.ErrNotFound }

func (emptyUserRepo) UpdateProfile(*user.User) error { return nil }

func (emptyUserRepo) ListByRoles([]rbac.Role) ([]*user.User, error) { return nil, nil }

// errorBody mirrors the JSON envelope WriteJSON produces for AppError responses.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

var _ = Describe("Case Handler Integration", func() {
	var (
		db      *gorm.DB
		service *casefile.Service
		handler *casefile.Handler

		detective *auth.User
		constable *auth.User
		commander *auth.User
		provMin   *auth.User
	)

	// serve runs the request through a chi router with the given user already
	// authenticated, the way AuthMiddleware would have left it.
	serve := func(user *auth.User, method, target string, body interface{}) *httptest.ResponseRecorder {
		router := chi.NewRouter()
		if user != nil {
			router.Use(func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
					next.ServeHTTP(w, req.WithContext(auth.ContextWithUser(req.Context(), user)))
				})
			})
		}
		router.Post("/cases", handler.CreateCase)
		router.Get("/cases", handler.ListCases)
		router.Get("/cases/metadata", handler.Metadata)
		router.Get("/cases/{id}", handler.GetCase)
		router.Patch("/cases/{id}/status", handler.ChangeStatus)
		router.Patch("/cases/{id}/assign", handler.AssignOfficer)
		router.Post("/cases/{id}/notes", handler.AddNote)

		var reader *bytes.Reader
		if body != nil {
			raw, err := json.Marshal(body)
			Expect(err).NotTo(HaveOccurred())
			reader = bytes.NewReader(raw)
		} else {
			reader = bytes.NewReader(nil)
		}

		req := httptest.NewRequest(method, target, reader)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	decodeCase := func(w *httptest.ResponseRecorder) *casefile.Case {
		var c casefile.Case
		Expect(json.NewDecoder(w.Body).Decode(&c)).To(Succeed())
		return &c
	}

	decodeError := func(w *httptest.ResponseRecorder) errorBody {
		var e errorBody
		Expect(json.NewDecoder(w.Body).Decode(&e)).To(Succeed())
		return e
	}

	validBody := func() casefile.CreateCaseDTO {
		return casefile.CreateCaseDTO{
			CrimeType:    "Armed Robbery",
			Province:     "Gauteng",
			District:     "Johannesburg Central",
			IncidentDate: time.Now().Add(-24 * time.Hour),
			Description:  "Armed robbery at a retail store on Commissioner Street",
		}
	}

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
			TranslateError: true,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.AutoMigrate(&casefileDatamodel.Case{})).To(Succeed())

		slogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		repo := casefilePostgres.NewCaseRepository(db)
		officers := user.NewService(emptyUserRepo{}, slogger)
		service = casefile.NewService(repo, rbac.NewPolicy(nil), nil, officers, slogger)
		handler = casefile.NewHandler(service)

		detective = &auth.User{ID: 1, Email: "detective@saps.gov.za", FullName: "Det. Naidoo", Role: rbac.RoleDetective, Province: "Gauteng"}
		constable = &auth.User{ID: 2, Email: "constable@saps.gov.za", FullName: "Const. Dlamini", Role: rbac.RoleConstable, Province: "Gauteng"}
		commander = &auth.User{ID: 4, Email: "commander@saps.gov.za", FullName: "Capt. Meyer", Role: rbac.RoleStationCommander, Province: "Gauteng"}
		provMin = &auth.User{ID: 3, Email: "provincial@saps.gov.za", FullName: "Min. Botha", Role: rbac.RoleProvincialMinister, Province: "Western Cape"}
	})

	Describe("POST /cases", func() {
		It("opens a case with a generated number and seeded history", func() {
			w := serve(detective, http.MethodPost, "/cases", validBody())

			Expect(w.Code).To(Equal(http.StatusCreated))
			c := decodeCase(w)
			Expect(c.CaseNumber).To(HavePrefix(fmt.Sprintf("SAPS-%d-", time.Now().Year())))
			Expect(c.Status).To(Equal(rbac.StatusReported))
			Expect(c.StatusHistory).To(HaveLen(1))
			Expect(c.StatusHistory[0].ChangedBy).To(Equal("Det. Naidoo"))
			Expect(c.AssignedOfficerName).To(Equal("Det. Naidoo"))
		})

		It("returns 403 when a minister tries to open a case", func() {
			w := serve(provMin, http.MethodPost, "/cases", validBody())

			Expect(w.Code).To(Equal(http.StatusForbidden))
			Expect(decodeError(w).Error.Code).To(Equal("PERMISSION_DENIED"))

			var count int64
			Expect(db.Model(&casefileDatamodel.Case{}).Count(&count).Error).To(Succeed())
			Expect(count).To(BeZero())
		})

		It("lists every missing required field", func() {
			w := serve(constable, http.MethodPost, "/cases", casefile.CreateCaseDTO{})

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(decodeError(w).Error.Code).To(Equal("MISSING_REQUIRED_FIELDS"))
		})

		It("returns 401 without an authenticated user", func() {
			w := serve(nil, http.MethodPost, "/cases", validBody())
			Expect(w.Code).To(Equal(http.StatusUnauthorized))
		})
	})

	Describe("PATCH /cases/{id}/status", func() {
		var caseID int64

		BeforeEach(func() {
			w := serve(constable, http.MethodPost, "/cases", validBody())
			Expect(w.Code).To(Equal(http.StatusCreated))
			caseID = decodeCase(w).ID
		})

		It("lets a detective move the case into evidence collection", func() {
			w := serve(detective, http.MethodPatch, fmt.Sprintf("/cases/%d/status", caseID),
				casefile.ChangeStatusDTO{Status: rbac.StatusEvidenceCollection})

			Expect(w.Code).To(Equal(http.StatusOK))
			c := decodeCase(w)
			Expect(c.Status).To(Equal(rbac.StatusEvidenceCollection))
			Expect(c.StatusHistory).To(HaveLen(2))
		})

		It("blocks a constable from reaching evidence collection", func() {
			w := serve(constable, http.MethodPatch, fmt.Sprintf("/cases/%d/status", caseID),
				casefile.ChangeStatusDTO{Status: rbac.StatusEvidenceCollection})

			Expect(w.Code).To(Equal(http.StatusForbidden))
			Expect(decodeError(w).Error.Code).To(Equal("STATUS_NOT_PERMITTED"))
		})
	})

	Describe("PATCH /cases/{id}/assign", func() {
		It("returns 404 when the officer does not exist", func() {
			w := serve(constable, http.MethodPost, "/cases", validBody())
			Expect(w.Code).To(Equal(http.StatusCreated))
			caseID := decodeCase(w).ID

			w = serve(commander, http.MethodPatch, fmt.Sprintf("/cases/%d/assign", caseID),
				casefile.AssignOfficerDTO{OfficerID: 424242})

			Expect(w.Code).To(Equal(http.StatusNotFound))
			Expect(decodeError(w).Error.Code).To(Equal("USER_NOT_FOUND"))
		})
	})

	Describe("POST /cases/{id}/notes", func() {
		It("rejects a whitespace-only note", func() {
			w := serve(detective, http.MethodPost, "/cases", validBody())
			Expect(w.Code).To(Equal(http.StatusCreated))
			caseID := decodeCase(w).ID

			w = serve(detective, http.MethodPost, fmt.Sprintf("/cases/%d/notes", caseID),
				casefile.AddNoteDTO{Note: "   "})

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(decodeError(w).Error.Code).To(Equal("EMPTY_NOTE"))
		})
	})

	Describe("GET /cases", func() {
		BeforeEach(func() {
			gauteng := validBody()
			w := serve(detective, http.MethodPost, "/cases", gauteng)
			Expect(w.Code).To(Equal(http.StatusCreated))

			westernCape := validBody()
			westernCape.Province = "Western Cape"
			westernCape.District = "Cape Town Central"
			w = serve(detective, http.MethodPost, "/cases", westernCape)
			Expect(w.Code).To(Equal(http.StatusCreated))
		})

		It("pins a provincial minister to their own province", func() {
			w := serve(provMin, http.MethodGet, "/cases?province=Gauteng", nil)

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp struct {
				Cases []*casefile.Case `json:"cases"`
			}
			Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
			Expect(resp.Cases).To(HaveLen(1))
			Expect(resp.Cases[0].Province).To(Equal("Western Cape"))
		})

		It("returns both provinces for a detective", func() {
			w := serve(detective, http.MethodGet, "/cases", nil)

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp struct {
				Cases []*casefile.Case `json:"cases"`
			}
			Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
			Expect(resp.Cases).To(HaveLen(2))
		})
	})

	Describe("GET /cases/metadata", func() {
		It("serves the form vocabulary without authentication", func() {
			w := serve(nil, http.MethodGet, "/cases/metadata", nil)

			Expect(w.Code).To(Equal(http.StatusOK))
			var meta map[string][]string
			Expect(json.NewDecoder(w.Body).Decode(&meta)).To(Succeed())
			Expect(meta["provinces"]).To(ContainElement("Gauteng"))
			Expect(meta["priorities"]).To(ConsistOf("Low", "Medium", "High", "Critical"))
			Expect(meta["statuses"]).To(HaveLen(10))
		})
	})
})
