package http

import (
	"net/http"

	"gov-token-booking/internal/delivery/http/handler"
	"gov-token-booking/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router            *mux.Router
	tokenHandler      *handler.TokenHandler
	slotHandler       *handler.SlotHandler
	departmentHandler *handler.DepartmentHandler
	holidayHandler    *handler.HolidayHandler
	reportHandler     *handler.ReportHandler
	liveHandler       *handler.LiveHandler
	auditLogHandler   *handler.AuditLogHandler
	authMiddleware    *middleware.AuthMiddleware
	corsMiddleware    *middleware.CORSMiddleware
}

func NewRouter(
	tokenHandler *handler.TokenHandler,
	slotHandler *handler.SlotHandler,
	departmentHandler *handler.DepartmentHandler,
	holidayHandler *handler.HolidayHandler,
	reportHandler *handler.ReportHandler,
	liveHandler *handler.LiveHandler,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:            mux.NewRouter(),
		tokenHandler:      tokenHandler,
		slotHandler:       slotHandler,
		departmentHandler: departmentHandler,
		holidayHandler:    holidayHandler,
		reportHandler:     reportHandler,
		liveHandler:       liveHandler,
		auditLogHandler:   auditLogHandler,
		authMiddleware:    authMiddleware,
		corsMiddleware:    corsMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Public routes: browsing and the waiting room display need no login
	api.HandleFunc("/departments", r.departmentHandler.ListDepartments).Methods(http.MethodGet)
	api.HandleFunc("/departments/{id}", r.departmentHandler.GetDepartment).Methods(http.MethodGet)
	api.HandleFunc("/holidays", r.holidayHandler.ListHolidays).Methods(http.MethodGet)
	api.HandleFunc("/slots", r.slotHandler.ListSlots).Methods(http.MethodGet)
	api.HandleFunc("/live", r.liveHandler.StreamCurrentToken).Methods(http.MethodGet)

	// Citizen routes (protected)
	tokens := api.PathPrefix("/tokens").Subrouter()
	tokens.Use(r.authMiddleware.Authenticate)
	tokens.HandleFunc("", r.tokenHandler.BookToken).Methods(http.MethodPost)
	tokens.HandleFunc("/mine", r.tokenHandler.GetMyTokens).Methods(http.MethodGet)
	tokens.HandleFunc("/{id}", r.tokenHandler.CancelToken).Methods(http.MethodDelete)

	// Staff routes (protected - staff or admin)
	staff := api.PathPrefix("/staff").Subrouter()
	staff.Use(r.authMiddleware.Authenticate)
	staff.Use(middleware.RequireStaff)
	staff.HandleFunc("/tokens", r.tokenHandler.GetDepartmentTokens).Methods(http.MethodGet)
	staff.HandleFunc("/tokens/{id}/status", r.tokenHandler.UpdateTokenStatus).Methods(http.MethodPatch)
	staff.HandleFunc("/reports", r.reportHandler.GetTokenReport).Methods(http.MethodGet)

	// Admin routes (protected - admin only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)

	admin.HandleFunc("/departments", r.departmentHandler.CreateDepartment).Methods(http.MethodPost)
	admin.HandleFunc("/departments/{id}", r.departmentHandler.UpdateDepartment).Methods(http.MethodPut)
	admin.HandleFunc("/departments/{id}", r.departmentHandler.DeleteDepartment).Methods(http.MethodDelete)

	admin.HandleFunc("/slots", r.slotHandler.CreateSlot).Methods(http.MethodPost)
	admin.HandleFunc("/slots/{id}", r.slotHandler.UpdateSlot).Methods(http.MethodPatch)
	admin.HandleFunc("/slots/{id}", r.slotHandler.DeleteSlot).Methods(http.MethodDelete)

	admin.HandleFunc("/holidays", r.holidayHandler.CreateHoliday).Methods(http.MethodPost)
	admin.HandleFunc("/holidays/{id}", r.holidayHandler.DeleteHoliday).Methods(http.MethodDelete)

	admin.HandleFunc("/audit-logs", r.auditLogHandler.GetAuditLogs).Methods(http.MethodGet)

	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
