package tenancy

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/openkcm/tenancy/internal/apierrors"
	"github.com/openkcm/tenancy/internal/constants"
	"github.com/openkcm/tenancy/internal/errs"
	"github.com/openkcm/tenancy/internal/manager"
)

const maxBodyBytes = 1 << 20

// APIController serves the tenant administration and namespace endpoints.
type APIController struct {
	Manager *manager.TenantManager
}

func NewAPIController(m *manager.TenantManager) *APIController {
	return &APIController{Manager: m}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if err != nil {
		return errs.Wrap(apierrors.ErrDecodeBody, err)
	}

	return nil
}

// pageParams reads page and size. Absent values are left zero for the
// manager to default.
func pageParams(r *http.Request) (int, int, error) {
	vErr := &errs.ValidationError{}
	q := r.URL.Query()

	page := intParam(q.Get("page"), "page", vErr)
	size := intParam(q.Get("size"), "size", vErr)

	return page, size, vErr.OrNil()
}

func intParam(raw, field string, vErr *errs.ValidationError) int {
	if raw == "" {
		return 0
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		vErr.Add(field, "must be an integer")
		return 0
	}

	return v
}

func tenantIDParam(r *http.Request) string {
	return r.PathValue(constants.TenantPathParam)
}
