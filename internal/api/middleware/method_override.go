package middleware

import (
	"net/http"
	"strings"
)

// MethodOverride 让 HTML 表单通过 POST ?_method=PUT|PATCH|DELETE 访问对应路由；需在路由匹配前生效
func MethodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			switch m := strings.ToUpper(r.URL.Query().Get("_method")); m {
			case http.MethodPut, http.MethodPatch, http.MethodDelete:
				r.Method = m
			}
		}
		next.ServeHTTP(w, r)
	})
}
