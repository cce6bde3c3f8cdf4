package modules

import (
	"encoding/json"
	"expvar"
	"net/http"

	"github.com/gin-gonic/gin"
)

// DebugModule publishes expvar counters, including the login totals.
// cmdline is left out since start-up flags may carry credentials.
type DebugModule struct{}

func NewDebugModule() *DebugModule { return &DebugModule{} }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	rg.GET("/debug/vars", m.all)
	rg.GET("/debug/vars/:name", m.one)
}

func (m *DebugModule) all(c *gin.Context) {
	out := map[string]json.RawMessage{}
	expvar.Do(func(kv expvar.KeyValue) {
		if kv.Key != "cmdline" {
			out[kv.Key] = json.RawMessage(kv.Value.String())
		}
	})
	c.JSON(http.StatusOK, out)
}

func (m *DebugModule) one(c *gin.Context) {
	name := c.Param("name")
	v := expvar.Get(name)
	if v == nil || name == "cmdline" {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown variable"})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(v.String()))
}
