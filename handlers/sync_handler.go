package handlers

import (
	"errors"
	"net/http"

	"github.com/mkopka/prediction-pool/services"
)

// maxWorkbookSize caps uploaded spreadsheet size at 10MB.
const maxWorkbookSize = 10 << 20

type SyncHandler struct {
	syncService    services.SyncService
	rankingService services.RankingService
}

func NewSyncHandler(syncService services.SyncService, rankingService services.RankingService) *SyncHandler {
	return &SyncHandler{syncService: syncService, rankingService: rankingService}
}

// UploadWorkbookHandler accepts a multipart upload with the workbook
// under the "file" field, reconciles it, then recomputes rankings so
// freshly imported guesses are scored immediately.
func (h *SyncHandler) UploadWorkbookHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxWorkbookSize)
	if err := r.ParseMultipartForm(maxWorkbookSize); err != nil {
		badRequestResponse(w, r, errors.New("could not parse multipart form"))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		badRequestResponse(w, r, errors.New("missing \"file\" form field"))
		return
	}
	defer file.Close()

	report, err := h.syncService.SyncWorkbook(r.Context(), file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if _, err := h.rankingService.Recalculate(r.Context(), services.DefaultTournamentID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"report": report}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
