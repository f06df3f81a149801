package mockapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nhle/mailterm/internal/model"
)

// Options configures the router.
type Options struct {
	// Token, when set, is the only bearer token accepted.
	Token string
}

// NewRouter returns a gin engine serving the messaging API from s.
func NewRouter(s *Store, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	h := &handler{store: s}
	api := r.Group("/", requireToken(opts.Token))
	{
		api.GET("/get/inbox/", h.getInbox)
		api.GET("/get/thread/", h.getThread)
		api.GET("/get/notifications/", h.getNotifications)
		api.GET("/get/reply/info/", h.getReplyInfo)
		api.GET("/get/unread/count/", h.getUnreadCount)
		api.POST("/search/recipient/", h.searchRecipient)
		api.POST("/send/message/", h.sendMessage)
		api.GET("/delete/message/item/", h.deleteMessageItem)
		api.GET("/mark/notification/read/", h.markNotificationRead)
	}
	return r
}

func requireToken(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}
		if c.GetHeader("Authorization") != "Bearer "+token {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"type":         "error",
				"errorMessage": "Authentication required",
			})
			return
		}
		c.Next()
	}
}

type handler struct {
	store *Store
}

func intQuery(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.DefaultQuery(key, strconv.Itoa(def)))
	if err != nil {
		return def
	}
	return v
}

func miid(c *gin.Context) int64 {
	v, _ := strconv.ParseInt(c.Query("miid"), 10, 64)
	return v
}

// hasFlag reports whether key is present in the query, with or without a
// value.
func hasFlag(c *gin.Context, key string) bool {
	_, ok := c.GetQuery(key)
	return ok
}

func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errNotFound):
		c.JSON(http.StatusNotFound, gin.H{"type": "warning", "errorMessage": err.Error()})
	case errors.Is(err, errForbidden):
		c.JSON(http.StatusForbidden, gin.H{"type": "error", "errorMessage": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"type": "danger", "errorMessage": err.Error()})
	}
}

func (h *handler) getInbox(c *gin.Context) {
	field := c.DefaultQuery("sort_field", model.SortByDate)
	dir := c.DefaultQuery("sort_dir", model.SortDesc)
	if field != model.SortByDate && field != model.SortBySender {
		c.JSON(http.StatusBadRequest, gin.H{"type": "danger", "errorMessage": "invalid sort field"})
		return
	}
	if dir != model.SortAsc && dir != model.SortDesc {
		c.JSON(http.StatusBadRequest, gin.H{"type": "danger", "errorMessage": "invalid sort direction"})
		return
	}
	c.JSON(http.StatusOK, h.store.Inbox(intQuery(c, "page", 0), intQuery(c, "per_page", 10), field, dir))
}

func (h *handler) getThread(c *gin.Context) {
	th, err := h.store.Thread(miid(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, th)
}

func (h *handler) getNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Notifications(intQuery(c, "page", 0), intQuery(c, "per_page", 10)))
}

func (h *handler) getReplyInfo(c *gin.Context) {
	info, err := h.store.ReplyInfo(miid(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *handler) getUnreadCount(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"count": h.store.UnreadCount(hasFlag(c, "n"))})
}

func (h *handler) searchRecipient(c *gin.Context) {
	var req model.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"type": "danger", "errorMessage": "invalid search request"})
		return
	}
	c.JSON(http.StatusOK, h.store.Search(strings.TrimSpace(req.Query), req.Recipients, req.Page))
}

func (h *handler) sendMessage(c *gin.Context) {
	var msg model.OutgoingMessage
	if err := c.ShouldBindJSON(&msg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"type": "danger", "errorMessage": "invalid message"})
		return
	}
	if err := h.store.Send(msg); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"successMessage": "Message sent successfully!"})
}

func (h *handler) deleteMessageItem(c *gin.Context) {
	text, err := h.store.Delete(miid(c), hasFlag(c, "thread"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"successMessage": text})
}

func (h *handler) markNotificationRead(c *gin.Context) {
	if err := h.store.MarkRead(miid(c)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"successMessage": "Notification marked as read successfully!"})
}
