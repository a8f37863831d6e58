package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	LangUz = "uz"
	LangRu = "ru"
)

type localized struct {
	uz string
	ru string
}

func (l localized) in(lang string) string {
	if lang == LangRu {
		return l.ru
	}
	return l.uz
}

var (
	msgUnauthorized = localized{
		uz: "Avtorizatsiya talab qilinadi",
		ru: "Требуется авторизация",
	}
	msgForbidden = localized{
		uz: "Ushbu amal uchun ruxsat yo'q",
		ru: "Недостаточно прав для этого действия",
	}
	msgRateLimited = localized{
		uz: "So'rovlar soni chegaradan oshdi",
		ru: "Слишком много запросов",
	}
	msgTimeout = localized{
		uz: "So'rov vaqti tugadi",
		ru: "Время ожидания запроса истекло",
	}
)

// Language picks uz or ru from the lang query parameter, then the first
// supported tag of Accept-Language. Uzbek is the default.
func Language(c *gin.Context) string {
	if lang := strings.ToLower(c.Query("lang")); lang == LangRu || lang == LangUz {
		return lang
	}
	for _, part := range strings.Split(c.GetHeader("Accept-Language"), ",") {
		tag := strings.ToLower(strings.TrimSpace(part))
		if i := strings.IndexAny(tag, ";-_"); i >= 0 {
			tag = tag[:i]
		}
		switch tag {
		case LangRu:
			return LangRu
		case LangUz:
			return LangUz
		}
	}
	return LangUz
}
