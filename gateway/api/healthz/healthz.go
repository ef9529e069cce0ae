package apihealthz

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// LivenessHandler validates if the api port has connectivity
func LivenessHandler(apiAddr string) func(_ *gin.Context) {
	return func(c *gin.Context) {
		if err := checkAddrLiveness(apiAddr); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"liveness": fmt.Sprintf("api=%v", err)})
			return
		}
		c.JSON(http.StatusOK, gin.H{"liveness": "OK"})
	}
}

func checkAddrLiveness(addr string) error {
	timeout := time.Second * 3
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return fmt.Errorf("not responding, err=%v", err)
	}
	_ = conn.Close()
	return nil
}
