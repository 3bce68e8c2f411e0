package server

import (
	"errors"
	"net/http"

	"github.com/attachehq/attache/internal/authflow"
	"github.com/attachehq/attache/internal/google"
	"github.com/attachehq/attache/internal/instrumentation"
	"github.com/attachehq/attache/internal/logging"
)

const callbackSuccessPage = `<html><body>
<h3>Authorization complete.</h3>
<p>You can close this tab and return to the app.</p>
</body></html>`

const callbackFailurePage = `<html><body>
<h3>Authorization failed.</h3>
<p>You can close this tab and try again.</p>
</body></html>`

// handleGoogleCallback receives the provider redirect and resolves the
// pending authorization request bound to the state token. The page
// shown is terminal either way; diagnostics live on the persisted
// request row, not in the response.
func (sc *ServerContext) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		http.Error(w, "Missing code or state", http.StatusBadRequest)
		return
	}

	requestID, err := sc.flows.HandleCallback(r.Context(), google.ProviderName, code, state)
	if err != nil {
		logging.WithProvider(sc.logger, google.ProviderName).Warn("oauth callback failed",
			"request_id", requestID,
			logging.Err(err),
		)
		if sc.metrics != nil {
			sc.metrics.RecordOAuthFlow(google.ProviderName, instrumentation.StatusError)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(callbackFailureCode(err))
		w.Write([]byte(callbackFailurePage))
		return
	}

	if sc.metrics != nil {
		sc.metrics.RecordOAuthFlow(google.ProviderName, instrumentation.StatusSuccess)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(callbackSuccessPage))
}

func callbackFailureCode(err error) int {
	var perr *authflow.ProviderError
	if errors.As(err, &perr) {
		return http.StatusBadGateway
	}
	if errors.Is(err, authflow.ErrInvalidState) || errors.Is(err, authflow.ErrStateExpired) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
