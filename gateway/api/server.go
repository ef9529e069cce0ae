package api

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/netgfx/slack-jira-automation/common/log"
	"github.com/netgfx/slack-jira-automation/common/monitoring"
	"github.com/netgfx/slack-jira-automation/common/version"
	apihealthz "github.com/netgfx/slack-jira-automation/gateway/api/healthz"
	"github.com/netgfx/slack-jira-automation/gateway/jira"
	"github.com/netgfx/slack-jira-automation/gateway/submission"
	"github.com/slack-go/slack"
)

// IssueMetadata lists the options rendered in the QA issue modal
type IssueMetadata interface {
	FetchProjects(ctx context.Context) []jira.Project
	FetchIssueTypes(ctx context.Context) []jira.IssueType
}

type ModalOpener interface {
	OpenModal(ctx context.Context, triggerID string, view slack.ModalViewRequest) error
}

type SubmissionProcessor interface {
	Process(ctx context.Context, req submission.Request) *submission.Outcome
}

type Api struct {
	Metadata          IssueMetadata
	Modal             ModalOpener
	Processor         SubmissionProcessor
	SigningSecret     string
	SkipVerification  bool
	DefaultProjectKey string
	ListenAddr        string
	TLSConfig         *tls.Config
	SentryInit        bool

	// runs the submission processing after the acknowledgment,
	// defaults to a new goroutine
	dispatch func(fn func())
}

// Handler builds the routes of the api
func (api *Api) Handler() *gin.Engine {
	route := gin.New()
	route.Use(ginzap.RecoveryWithZap(log.Logger(), false))
	if os.Getenv("GIN_MODE") == "debug" {
		route.Use(ginzap.Ginzap(log.Logger(), time.RFC3339, true))
	}
	// https://pkg.go.dev/github.com/gin-gonic/gin#readme-don-t-trust-all-proxies
	_ = route.SetTrustedProxies(nil)

	route.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Slack-Jira integration service is running")
	})
	route.GET("/healthz", apihealthz.LivenessHandler(api.localAddr()))
	route.GET("/version", func(c *gin.Context) {
		c.PureJSON(http.StatusOK, version.Get())
	})

	rg := route.Group("/slack")
	if api.SentryInit {
		rg.Use(sentrygin.New(sentrygin.Options{
			Repanic: true,
		}))
	}
	rg.POST("/commands", api.VerifySlackRequest, api.SlashCommand)
	rg.POST("/interactive", api.VerifySlackRequest, api.Interactive)
	return route
}

// StartAPI serves the api until it fails. TLS is enabled when a tls config is set.
func (api *Api) StartAPI() error {
	srv := &http.Server{
		Addr:              api.ListenAddr,
		Handler:           api.Handler(),
		TLSConfig:         api.TLSConfig,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Infof("starting http server at %v, tls=%v", api.ListenAddr, api.TLSConfig != nil)
	if api.TLSConfig != nil {
		return srv.ListenAndServeTLS("", "")
	}
	return srv.ListenAndServe()
}

// localAddr returns the loopback address of the listen address
func (api *Api) localAddr() string {
	_, port, err := net.SplitHostPort(api.ListenAddr)
	if err != nil || port == "" {
		return "127.0.0.1:3000"
	}
	return "127.0.0.1:" + port
}

// runAsync runs fn outside of the request, a panic is logged and reported to sentry
func (api *Api) runAsync(fn func()) {
	safeFn := func() {
		defer func() {
			if r := recover(); r != nil {
				log.Errorf("panic processing slack interaction, reason=%v", r)
				monitoring.CaptureError(fmt.Errorf("panic processing slack interaction: %v", r), nil)
			}
		}()
		fn()
	}
	if api.dispatch != nil {
		api.dispatch(safeFn)
		return
	}
	go safeFn()
}
