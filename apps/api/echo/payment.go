package echoapi

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/enrollment"
	"github.com/trezcool/darasa/core/payment"
)

const (
	signatureHeader = "X-Signature"
	maxWebhookBody  = 1 << 20
)

type (
	paymentApi struct {
		secret []byte
		svc    *payment.Service
	}

	WebhookResponse struct {
		Received   bool                   `json:"received"`
		Enrollment *enrollment.Enrollment `json:"enrollment"`
	}
)

func registerPaymentAPI(g *echo.Group, conf *core.Config, svc *payment.Service) {
	api := paymentApi{secret: []byte(conf.Payment.WebhookSecret), svc: svc}
	g.POST("/payments/webhook", api.webhook)
}

// SignPayload returns the hex HMAC-SHA256 of body, as expected in the X-Signature header.
func SignPayload(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func (api *paymentApi) verify(body []byte, signature string) bool {
	if len(api.secret) == 0 || signature == "" {
		return false
	}
	sig, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, api.secret)
	mac.Write(body)
	return hmac.Equal(sig, mac.Sum(nil))
}

// Handlers

func (api *paymentApi) webhook(ctx echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(ctx.Request().Body, maxWebhookBody))
	if err != nil {
		return errors.Wrap(err, "reading webhook body")
	}
	if !api.verify(body, ctx.Request().Header.Get(signatureHeader)) {
		return errBadSignature
	}

	var evt payment.Event
	if err = json.Unmarshal(body, &evt); err != nil {
		return core.NewValidationError(errors.New("malformed event payload"))
	}

	enr, err := api.svc.HandleEvent(ctx.Request().Context(), evt)
	if err != nil {
		return errors.Wrap(err, "handling payment event")
	}
	return ctx.JSON(http.StatusOK, WebhookResponse{Received: true, Enrollment: enr})
}
