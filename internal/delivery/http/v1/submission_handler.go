package v1

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"salon-booking-backend/internal/delivery/http/response"
	"salon-booking-backend/internal/domain"
	"salon-booking-backend/pkg/apperror"
	"salon-booking-backend/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
)

const maxBodyBytes = 1 << 20 // 1 MB

type SubmissionHandler struct {
	submissionUC domain.SubmissionUsecase
	now          func() time.Time
}

// NewSubmissionHandler registers the submission routes (public, no auth required).
// legacy carries the original form action so existing pages keep working.
func NewSubmissionHandler(public, legacy *gin.RouterGroup, submissionUC domain.SubmissionUsecase) {
	handler := &SubmissionHandler{
		submissionUC: submissionUC,
		now:          time.Now,
	}

	public.POST("/submissions", handler.Submit)
	legacy.POST("/booking.php", handler.Submit)
}

// Submit godoc
// @Summary      Submit Booking or Academy Application
// @Description  Accepts the booking form (form_type=booking, default) or the academy application form (form_type=career_application). A filled honeypot field yields 204 with no body.
// @Tags         submissions
// @Accept       x-www-form-urlencoded,json
// @Produce      json,html
// @Param        submission  body      domain.SubmissionRequest  true  "Form fields"
// @Success      200      {object}  response.Response
// @Success      204      "Discarded"
// @Failure      400      {object}  response.Response
// @Failure      405      {object}  response.Response
// @Failure      502      {object}  response.Response
// @Router       /submissions [post]
func (h *SubmissionHandler) Submit(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)

	values, bindErr := bindValues(c)

	// Honeypot: bots fill every field. Drop before doing any work, even
	// when the rest of the body is unusable.
	if validation.HoneypotFilled(values[validation.HoneypotField]) {
		response.Discard(c)
		return
	}
	if bindErr != nil {
		c.Error(apperror.BadRequest("Invalid form data."))
		return
	}

	formType, ok := domain.ParseFormType(values["form_type"])
	if !ok {
		c.Error(apperror.Validation([]string{"Unknown form type."}))
		return
	}

	sub := &domain.FormSubmission{
		ID:         uuid.New(),
		FormType:   formType,
		Fields:     domain.SubmissionFields(values),
		RemoteAddr: c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
		ReceivedAt: h.now(),
	}

	res, err := h.submissionUC.Submit(c.Request.Context(), sub)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, res.Message)
}

// bindValues reads a url-encoded, multipart or JSON body into field values.
// Whatever was read is returned alongside a bind error.
func bindValues(c *gin.Context) (map[string]string, error) {
	values := make(map[string]string)

	if c.ContentType() != binding.MIMEJSON {
		err := c.ShouldBindWith(&values, binding.Form)
		return values, err
	}

	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		return values, err
	}

	var bindErr error
	for k, v := range raw {
		s, ok := scalarString(v)
		if !ok {
			bindErr = fmt.Errorf("field %q is not a scalar", k)
			continue
		}
		values[k] = s
	}
	return values, bindErr
}

// scalarString renders a decoded JSON scalar the way a form post would carry it.
func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", true
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}
