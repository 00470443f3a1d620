package auth

import (
	"net/http"
	"time"
)

const operatorCookie = "_operator"

func VerifyOperator(r *http.Request, secret []byte) (string, error) {
	cookie, err := r.Cookie(operatorCookie)
	if err != nil {
		return "", err
	}
	operator, err := GetOperator(cookie.Value, secret)
	if err != nil {
		return "", err
	}
	return operator, nil
}

func SetAuthCookie(username string, w http.ResponseWriter, secret []byte, TTLSeconds int) error {

	token, err := BuildJWTString(username, secret, time.Duration(TTLSeconds)*time.Second)
	if err != nil {
		return err
	}
	cookie := &http.Cookie{Name: operatorCookie, Value: token, MaxAge: TTLSeconds, Path: "/"}
	http.SetCookie(w, cookie)
	return nil
}
