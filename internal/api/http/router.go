package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"acetrack-backend/internal/security"
	"acetrack-backend/internal/service"
	"acetrack-backend/internal/storage"
)

// Services bundles everything the router wires handlers onto.
type Services struct {
	Auth         service.AuthService
	Events       service.EventService
	Orgs         service.OrganizationService
	Members      service.MemberService
	Subscription service.SubscriptionService
	Attendance   service.AttendanceService
	Users        service.UserService
	Banners      storage.BannerStore
}

// NewRouter builds the full API surface under /api/v1. Every route runs
// through the auth middleware; routes that accept anonymous callers
// (signup, login, public event and organization reads) simply see the
// anonymous actor.
func NewRouter(tm security.TokenManager, svcs Services) *mux.Router {
	r := mux.NewRouter()
	r.Use(LoggingMiddleware)
	r.Use(NewAuthMiddleware(tm, svcs.Auth).Handler)

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")

	auth := NewAuthHandler(svcs.Auth)
	api.HandleFunc("/auth/signup", auth.Signup).Methods("POST")
	api.HandleFunc("/auth/login", auth.Login).Methods("POST")
	api.HandleFunc("/auth/refresh", auth.Refresh).Methods("POST")

	users := NewUserHandler(svcs.Users)
	api.HandleFunc("/users/me", users.Me).Methods("GET")
	api.HandleFunc("/users/me", users.UpdateMe).Methods("PATCH")

	events := NewEventHandler(svcs.Events)
	api.HandleFunc("/events", events.Create).Methods("POST")
	api.HandleFunc("/events", events.List).Methods("GET")
	api.HandleFunc("/events/{id}", events.Get).Methods("GET")
	api.HandleFunc("/events/{id}", events.Update).Methods("PATCH")
	api.HandleFunc("/events/{id}", events.Delete).Methods("DELETE")
	api.HandleFunc("/events/{id}/status", events.Transition).Methods("POST")
	api.HandleFunc("/events/{id}/restore", events.Restore).Methods("POST")
	api.HandleFunc("/events/{id}/check-in-token", events.CheckInToken).Methods("POST")

	banners := NewBannerHandler(svcs.Events, svcs.Banners)
	api.HandleFunc("/events/{id}/banner", banners.Upload).Methods("PUT")
	api.HandleFunc("/banners/{key}", banners.Download).Methods("GET")

	orgs := NewOrganizationHandler(svcs.Orgs)
	api.HandleFunc("/organizations", orgs.Create).Methods("POST")
	api.HandleFunc("/organizations", orgs.List).Methods("GET")
	api.HandleFunc("/organizations/{id}", orgs.Get).Methods("GET")
	api.HandleFunc("/organizations/{id}", orgs.Update).Methods("PATCH")
	api.HandleFunc("/organizations/{id}", orgs.Delete).Methods("DELETE")

	members := NewMemberHandler(svcs.Members)
	api.HandleFunc("/organizations/{id}/join", members.Join).Methods("POST")
	api.HandleFunc("/members", members.Add).Methods("POST")
	api.HandleFunc("/members", members.List).Methods("GET")
	api.HandleFunc("/members/my", members.Mine).Methods("GET")
	api.HandleFunc("/members/{id}", members.Update).Methods("PATCH")
	api.HandleFunc("/members/{id}", members.Remove).Methods("DELETE")
	api.HandleFunc("/members/{id}/approve", members.Approve).Methods("POST")
	api.HandleFunc("/members/{id}/reject", members.Reject).Methods("POST")

	subs := NewSubscriptionHandler(svcs.Subscription)
	api.HandleFunc("/subscriptions", subs.Create).Methods("POST")
	api.HandleFunc("/subscriptions", subs.List).Methods("GET")
	api.HandleFunc("/subscriptions/{id}", subs.Get).Methods("GET")
	api.HandleFunc("/subscriptions/{id}", subs.Update).Methods("PATCH")
	api.HandleFunc("/subscriptions/{id}/verify", subs.Verify).Methods("POST")
	api.HandleFunc("/subscriptions/{id}/cancel", subs.Cancel).Methods("POST")

	attendance := NewAttendanceHandler(svcs.Attendance)
	api.HandleFunc("/attendance/check-in", attendance.CheckIn).Methods("POST")
	api.HandleFunc("/events/{id}/check-out", attendance.CheckOut).Methods("POST")
	api.HandleFunc("/events/{id}/attendance", attendance.EventReport).Methods("GET")
	api.HandleFunc("/attendance/my", attendance.Mine).Methods("GET")

	return r
}
