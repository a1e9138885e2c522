package webservices

import (
	"net/http"
	"sort"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/vtrender/styling"
	"github.com/jamesrr39/vtrender/vtdal"
	"github.com/paulmach/osm"
)

func NewInfoService(logger *logpkg.Logger, storeSet *vtdal.StoreSet, styleSet *styling.StyleSet) *InfoService {
	ws := &InfoService{logger, storeSet, styleSet, chi.NewRouter()}
	ws.Get("/", ws.handleGet)

	return ws
}

type InfoService struct {
	logger   *logpkg.Logger
	storeSet *vtdal.StoreSet
	styleSet *styling.StyleSet
	chi.Router
}

type stylesType struct {
	DefaultStyleID string   `json:"defaultStyleId"`
	StyleIDs       []string `json:"styleIds"`
}

type tileStoreInfo struct {
	Name   string     `json:"name"`
	Bounds osm.Bounds `json:"bounds"`
}

type infoType struct {
	Style      stylesType       `json:"style"`
	TileStores []*tileStoreInfo `json:"tileStores"`
}

func (ws *InfoService) handleGet(w http.ResponseWriter, r *http.Request) {
	infos := []*tileStoreInfo{}

	for _, store := range ws.storeSet.GetStores() {
		coverage, err := store.Coverage()
		if err != nil {
			errorsx.HTTPError(w, ws.logger, errorsx.Wrap(err, "store", store.Name()), http.StatusInternalServerError)
			return
		}

		infos = append(infos, &tileStoreInfo{store.Name(), coverage})
	}

	// make deterministic
	sort.Slice(infos, func(a, b int) bool {
		return infos[a].Name < infos[b].Name
	})

	style := stylesType{
		ws.styleSet.GetDefaultStyle().GetStyleID(),
		ws.styleSet.GetAllStyleIDs(),
	}

	render.JSON(w, r, infoType{style, infos})
}
