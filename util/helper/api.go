package helper_util

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

const maxPageSize = 100

func GetPaginationParams(c *gin.Context) (limit int, offset int, err error) {
	limit, err = strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil {
		return 0, 0, err
	}
	offset, err = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil {
		return 0, 0, err
	}
	if limit < 1 || limit > maxPageSize || offset < 0 {
		return 0, 0, fmt.Errorf("pagination out of range")
	}
	return limit, offset, nil
}
