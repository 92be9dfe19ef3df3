package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/Hekkura/LibraryAppBE/pkg/domain"
	"github.com/Hekkura/LibraryAppBE/pkg/search"
)

// HandleSearch searches an application index. POST takes the parameters as
// a JSON body, GET as query parameters (search_in is comma separated).
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	appID, err := pathOwner(r, "app_id")
	if err != nil {
		writeError(w, err)
		return
	}
	index := mux.Vars(r)["index"]

	var params search.Params
	if r.Method == http.MethodPost {
		if err := decodeJSON(r, &params); err != nil {
			writeError(w, err)
			return
		}
	} else if params, err = searchParamsFromQuery(r); err != nil {
		writeError(w, err)
		return
	}

	page := domain.DefaultSearchPage()
	if params.From != nil {
		page.From = *params.From
	}
	if params.Count != nil {
		page.Size = *params.Count
	}
	if err := page.Validate(); err != nil {
		writeError(w, domain.BadDataRequest(err.Error(), nil))
		return
	}

	log.Debug().Str("app_id", appID).Str("index", index).Str("search_term", params.Term).Msg("handleSearch called")

	rec, err := h.indexes.Require(r.Context(), appID, index)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := h.backend.Search(r.Context(), rec.Qualified, domain.SearchRequest{
		Body: search.BuildQuery(params),
		Page: page,
	})
	if err != nil {
		writeError(w, classifyBackend(err, func() error {
			return domain.ResourceNotFound("index", rec.Name)
		}))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func searchParamsFromQuery(r *http.Request) (search.Params, error) {
	q := r.URL.Query()
	params := search.Params{
		Term:         q.Get("search_term"),
		Fields:       search.ParseFieldList(q.Get("search_in")),
		ReturnFields: q.Get("return_fields"),
	}
	for key, dst := range map[string]**int{"from": &params.From, "count": &params.Count} {
		raw := q.Get(key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return params, domain.BadDataRequest(key+" must be an integer", err)
		}
		*dst = &n
	}
	return params, nil
}
