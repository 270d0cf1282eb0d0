package http

import (
	"fmt"
	"net/http"

	"acetrack-backend/internal/domain"
	"acetrack-backend/internal/service"
)

type MemberHandler struct {
	memberService service.MemberService
}

func NewMemberHandler(ms service.MemberService) *MemberHandler {
	return &MemberHandler{memberService: ms}
}

type addMemberRequest struct {
	OrgID  int32  `json:"org_id"`
	UserID int32  `json:"user_id"`
	Role   string `json:"role"`
	Notes  string `json:"notes"`
}

func (h *MemberHandler) Add(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req addMemberRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	role := domain.MemberRoleMember
	if req.Role != "" {
		parsed, ok := domain.ParseMemberRole(req.Role)
		if !ok {
			writeError(w, fmt.Errorf("%w: unknown member role %q", domain.ErrValidation, req.Role))
			return
		}
		role = parsed
	}

	member, err := h.memberService.AddMember(r.Context(), actor, req.OrgID, req.UserID, role, req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, member)
}

type joinRequest struct {
	Notes string `json:"notes"`
}

func (h *MemberHandler) Join(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		writeError(w, err)
		return
	}
	orgID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req joinRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	member, err := h.memberService.RequestToJoin(r.Context(), actor, orgID, req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, member)
}

func (h *MemberHandler) Approve(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	member, err := h.memberService.ApproveMember(r.Context(), actor, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, member)
}

func (h *MemberHandler) Reject(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.memberService.RejectMember(r.Context(), actor, id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type updateMemberRequest struct {
	Role   *string `json:"role"`
	Status *string `json:"status"`
	Notes  *string `json:"notes"`
}

func (h *MemberHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req updateMemberRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	var role *domain.MemberRole
	if req.Role != nil {
		parsed, ok := domain.ParseMemberRole(*req.Role)
		if !ok {
			writeError(w, fmt.Errorf("%w: unknown member role %q", domain.ErrValidation, *req.Role))
			return
		}
		role = &parsed
	}
	var status *domain.MemberStatus
	if req.Status != nil {
		parsed, ok := domain.ParseMemberStatus(*req.Status)
		if !ok {
			writeError(w, fmt.Errorf("%w: unknown member status %q", domain.ErrValidation, *req.Status))
			return
		}
		status = &parsed
	}

	member, err := h.memberService.UpdateMember(r.Context(), actor, id, role, status, req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, member)
}

func (h *MemberHandler) Remove(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.memberService.RemoveMember(r.Context(), actor, id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		writeError(w, err)
		return
	}

	members, err := h.memberService.ListMembers(r.Context(), actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

func (h *MemberHandler) Mine(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		writeError(w, err)
		return
	}

	members, err := h.memberService.MyMemberships(r.Context(), actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}
