// Copyright (c) 2026 The Liquefy developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/liquefy/liquefy/api/restutil"
	"github.com/liquefy/liquefy/eventdb"
)

// Events exposes the audit trail over REST.
type Events struct {
	db    *eventdb.EventDB
	limit uint64
}

func New(db *eventdb.EventDB, limit uint64) *Events {
	return &Events{db: db, limit: limit}
}

// handleFilter queries the audit trail with a filter body. The configured
// limit caps the page size.
func (e *Events) handleFilter(w http.ResponseWriter, req *http.Request) error {
	var filter eventdb.Filter
	if err := restutil.ParseJSON(req.Body, &filter); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if filter.Options == nil {
		filter.Options = &eventdb.Options{Limit: e.limit}
	}
	if filter.Options.Limit > e.limit {
		return restutil.Forbidden(errors.New("options.limit exceeds the maximum allowed"))
	}
	events, err := e.db.Query(req.Context(), &filter)
	if err != nil {
		return err
	}
	if events == nil {
		events = []*eventdb.Event{}
	}
	return restutil.WriteJSON(w, events)
}

func (e *Events) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodPost).
		HandlerFunc(restutil.WrapHandlerFunc(e.handleFilter))
	sub.Path("/").
		Methods(http.MethodPost).
		HandlerFunc(restutil.WrapHandlerFunc(e.handleFilter))
}
