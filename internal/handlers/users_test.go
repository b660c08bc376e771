package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/hrms_backend/internal/models"
	"github.com/Skotchmaster/hrms_backend/internal/repo"
	"github.com/Skotchmaster/hrms_backend/internal/roles"
)

func TestUpdateRole(t *testing.T) {
	cases := []struct {
		name       string
		callerRole string
		grant      string
		wantCode   int
	}{
		{"admin grants employee", roles.Admin, roles.Employee, http.StatusOK},
		{"admin grants admin", roles.Admin, roles.Admin, http.StatusOK},
		{"admin cannot grant superadmin", roles.Admin, roles.SuperAdmin, http.StatusForbidden},
		{"superadmin grants superadmin", roles.SuperAdmin, roles.SuperAdmin, http.StatusOK},
		{"employee grants nothing", roles.Employee, roles.Employee, http.StatusForbidden},
		{"unknown role rejected", roles.SuperAdmin, "Owner", http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db := initTestDB(t)
			caller := createTestUser(t, db, "caller@example.com", "pw", tc.callerRole, models.StatusActive)
			target := createTestUser(t, db, "target@example.com", "pw", roles.Employee, models.StatusActive)
			h := &UserHandler{Users: &repo.UserRepo{DB: db}}

			c, rec := jsonRequest(t, http.MethodPatch, "/admin/users/:id/role", map[string]string{"role": tc.grant})
			asUser(c, caller)
			c.SetParamNames("id")
			c.SetParamValues(strconv.FormatUint(uint64(target.ID), 10))

			err := h.UpdateRole(c)
			if tc.wantCode == http.StatusOK {
				require.NoError(t, err)
				require.Equal(t, http.StatusOK, rec.Code)

				// The 200 body carries the updated account.
				var fromBody models.User
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fromBody))
				require.Equal(t, target.ID, fromBody.ID)
				require.Equal(t, tc.grant, fromBody.Role)

				var updated models.User
				require.NoError(t, db.First(&updated, target.ID).Error)
				require.Equal(t, tc.grant, updated.Role)
				return
			}

			he, ok := err.(*echo.HTTPError)
			require.True(t, ok)
			require.Equal(t, tc.wantCode, he.Code)

			var untouched models.User
			require.NoError(t, db.First(&untouched, target.ID).Error)
			require.Equal(t, roles.Employee, untouched.Role)
		})
	}
}

func TestUpdateRoleUnknownUser(t *testing.T) {
	db := initTestDB(t)
	caller := createTestUser(t, db, "caller@example.com", "pw", roles.SuperAdmin, models.StatusActive)
	h := &UserHandler{Users: &repo.UserRepo{DB: db}}

	c, _ := jsonRequest(t, http.MethodPatch, "/admin/users/:id/role", map[string]string{"role": roles.Admin})
	asUser(c, caller)
	c.SetParamNames("id")
	c.SetParamValues("9999")

	err := h.UpdateRole(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusNotFound, he.Code)
}
