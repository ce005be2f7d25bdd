package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/datacite/datafiles-service/config"
	"github.com/datacite/datafiles-service/models"
	"github.com/datacite/datafiles-service/store"
	"github.com/datacite/datafiles-service/utils"
)

// User-facing messages. Every token failure reads the same on purpose:
// the response must not reveal whether the token was malformed, forged,
// expired or already used.
const (
	msgMissingToken = "Missing token - please check the link in your email and try again, making sure to include the ?token= parameter"
	msgInvalidToken = "Invalid token - please check the link in your email and try again"
)

// DatafileController carries the access request workflow: listing,
// detail + form, submission, and redemption of the emailed link.
type DatafileController struct {
	datafiles    store.DatafileStore
	requesters   store.RequesterStore
	codec        *utils.TokenCodec
	mailer       utils.Mailer
	links        utils.LinkIssuer
	baseURL      string
	supportEmail string
}

// NewDatafileController creates a DatafileController.
func NewDatafileController(db *gorm.DB, codec *utils.TokenCodec, mailer utils.Mailer, links utils.LinkIssuer, cfg config.AppConfig) *DatafileController {
	return &DatafileController{
		datafiles:    store.NewDatafileStore(db),
		requesters:   store.NewRequesterStore(db),
		codec:        codec,
		mailer:       mailer,
		links:        links,
		baseURL:      cfg.BaseURL,
		supportEmail: cfg.SupportEmail,
	}
}

// Index lists all datafiles.
func (d *DatafileController) Index(ctx *gin.Context) {
	files, err := d.datafiles.All(ctx.Request.Context())
	if err != nil {
		utils.Sugar.Errorf("listing datafiles: %v", err)
		d.serverError(ctx)
		return
	}
	ctx.HTML(http.StatusOK, "index.html", gin.H{
		"datafiles": files,
	})
}

// Show renders a datafile's detail page with the access request form.
func (d *DatafileController) Show(ctx *gin.Context) {
	file, ok := d.lookupDatafile(ctx)
	if !ok {
		return
	}
	d.renderForm(ctx, file, &AccessRequestForm{}, nil)
}

// RequestAccess handles a form submission: validate, persist the
// requester, mint a token and email the redemption link.
func (d *DatafileController) RequestAccess(ctx *gin.Context) {
	file, ok := d.lookupDatafile(ctx)
	if !ok {
		return
	}

	var form AccessRequestForm
	if err := ctx.ShouldBind(&form); err != nil {
		utils.Sugar.Warnf("binding access request form: %v", err)
		d.renderForm(ctx, file, &AccessRequestForm{}, map[string]string{"form": "Invalid submission."})
		return
	}
	if fieldErrors := form.Validate(); len(fieldErrors) > 0 {
		d.renderForm(ctx, file, &form, fieldErrors)
		return
	}

	requester := &models.Requester{
		Email:          form.Email,
		Name:           utils.Sanitize(form.Name),
		Organisation:   utils.Sanitize(form.Organisation),
		Contact:        form.Contact,
		PrimaryUse:     form.PrimaryUse,
		OtherUse:       utils.Sanitize(form.OtherUse),
		AdditionalInfo: utils.Sanitize(form.AdditionalInfo),
		DatafileID:     file.ID,
	}
	if err := d.requesters.Create(ctx.Request.Context(), requester); err != nil {
		utils.Sugar.Errorf("creating requester for datafile %s: %v", file.Slug, err)
		d.serverError(ctx)
		return
	}

	token, err := d.codec.Issue(requester.ID)
	if err != nil {
		utils.Sugar.Errorf("issuing token for requester %d: %v", requester.ID, err)
		d.serverError(ctx)
		return
	}

	subject, body, err := utils.RenderAccessLinkEmail(utils.AccessLinkEmail{
		Name:        requester.Name,
		Datafile:    file.Name,
		LinkHours:   int(d.codec.TTL().Hours()),
		URL:         d.redemptionURL(file.Slug, token),
		LandingPage: LandingPage(*file, d.baseURL),
		Support:     d.supportEmail,
	})
	if err != nil {
		utils.Sugar.Errorf("rendering access link email: %v", err)
		d.serverError(ctx)
		return
	}

	// The requester row stays even when delivery fails: the request is
	// valid, only the email went wrong, and support can resend.
	if _, err := d.mailer.Send(ctx.Request.Context(), requester.Email, subject, body); err != nil {
		utils.Sugar.Errorf("sending access link to requester %d: %v", requester.ID, err)
		d.serverError(ctx)
		return
	}

	ctx.HTML(http.StatusOK, "success.html", gin.H{
		"datafile":  file,
		"linkHours": int(d.codec.TTL().Hours()),
	})
}

// Download redeems a token for a temporary object URL.
func (d *DatafileController) Download(ctx *gin.Context) {
	token := ctx.Query("token")
	if token == "" {
		renderError(ctx, http.StatusForbidden, "Forbidden", msgMissingToken)
		return
	}

	identity, err := d.codec.Verify(token)
	if err != nil {
		renderError(ctx, http.StatusForbidden, "Forbidden", msgInvalidToken)
		return
	}
	if utils.IsRedeemed(identity.JTI) {
		renderError(ctx, http.StatusForbidden, "Forbidden", msgInvalidToken)
		return
	}

	requester, err := d.requesters.ByID(ctx.Request.Context(), identity.RequesterID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			renderError(ctx, http.StatusForbidden, "Forbidden", msgInvalidToken)
			return
		}
		utils.Sugar.Errorf("loading requester %d: %v", identity.RequesterID, err)
		d.serverError(ctx)
		return
	}

	file, ok := d.lookupDatafile(ctx)
	if !ok {
		return
	}

	downloadURL, ok := d.links.IssueLink(ctx.Request.Context(), file.Filename)
	if !ok {
		// Presign failure already logged with its cause; the user gets a
		// clean error page instead of a redirect to nowhere.
		utils.Sugar.Errorf("no download link for datafile %s (object %q)", file.Slug, file.Filename)
		renderError(ctx, http.StatusBadGateway, "Service unavailable",
			fmt.Sprintf("The file is temporarily unavailable - please try again later or contact %s", d.supportEmail))
		return
	}

	if err := d.requesters.MarkAccessed(ctx.Request.Context(), requester.ID, time.Now().UTC()); err != nil {
		utils.Sugar.Errorf("stamping access for requester %d: %v", requester.ID, err)
		d.serverError(ctx)
		return
	}
	utils.MarkRedeemed(identity.JTI, identity.ExpiresAt)

	ctx.Redirect(http.StatusFound, downloadURL)
}

// lookupDatafile resolves the slug parameter, rendering 404 or 500 and
// returning ok=false when it cannot.
func (d *DatafileController) lookupDatafile(ctx *gin.Context) (*models.Datafile, bool) {
	slug := ctx.Param("slug")
	file, err := d.datafiles.BySlug(ctx.Request.Context(), slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			renderError(ctx, http.StatusNotFound, "Page not found",
				fmt.Sprintf("Datafile %s does not exist", slug))
			return nil, false
		}
		utils.Sugar.Errorf("loading datafile %s: %v", slug, err)
		d.serverError(ctx)
		return nil, false
	}
	return file, true
}

func (d *DatafileController) renderForm(ctx *gin.Context, file *models.Datafile, form *AccessRequestForm, fieldErrors map[string]string) {
	checked := make(map[string]bool, len(form.PrimaryUse))
	for _, use := range form.PrimaryUse {
		checked[use] = true
	}
	ctx.HTML(http.StatusOK, "datafile.html", gin.H{
		"datafile":    file,
		"landingPage": LandingPage(*file, d.baseURL),
		"form":        form,
		"checked":     checked,
		"errors":      fieldErrors,
		"useChoices":  UseChoices,
	})
}

func (d *DatafileController) redemptionURL(slug, token string) string {
	return fmt.Sprintf("%s/datafiles/%s/download?token=%s", d.baseURL, slug, url.QueryEscape(token))
}

func (d *DatafileController) serverError(ctx *gin.Context) {
	renderError(ctx, http.StatusInternalServerError, "Internal server error",
		fmt.Sprintf("Something went wrong - please contact %s", d.supportEmail))
}

// renderError writes a templated error page.
func renderError(ctx *gin.Context, code int, status, message string) {
	ctx.HTML(code, "error.html", gin.H{
		"code":    code,
		"status":  status,
		"message": message,
	})
}
