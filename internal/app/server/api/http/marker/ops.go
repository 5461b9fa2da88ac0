package marker

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

const tag = "markers"

func (h *Handler) listOp() huma.Operation {
	return huma.Operation{
		OperationID: "markers-list",
		Method:      http.MethodGet,
		Path:        "/api/markers/all",
		Summary:     "Все маркеры",
		Tags:        []string{tag},
		Middlewares: h.middleware,
	}
}

func (h *Handler) findOp() huma.Operation {
	return huma.Operation{
		OperationID: "markers-find",
		Method:      http.MethodGet,
		Path:        "/api/markers/{id}",
		Summary:     "Получить маркер",
		Tags:        []string{tag},
		Middlewares: h.middleware,
	}
}

func (h *Handler) editOp() huma.Operation {
	return huma.Operation{
		OperationID: "markers-edit",
		Method:      http.MethodPut,
		Path:        "/api/markers/edit",
		Summary:     "Обновить маркер",
		Description: "Перезаписывает маркер целиком, последняя запись побеждает. Подписчики получают UpdateMarker.",
		Tags:        []string{tag},
		Middlewares: h.middleware,
	}
}

func (h *Handler) createOp() huma.Operation {
	return huma.Operation{
		OperationID:   "markers-create",
		Method:        http.MethodPost,
		Path:          "/api/markers",
		Summary:       "Создать маркер",
		Description:   "ID в теле игнорируется и назначается сервером. Подписчики получают AddMarker.",
		Tags:          []string{tag},
		DefaultStatus: http.StatusCreated,
		Middlewares:   h.middleware,
	}
}

func (h *Handler) deleteOp() huma.Operation {
	return huma.Operation{
		OperationID: "markers-delete",
		Method:      http.MethodDelete,
		Path:        "/api/markers/{id}",
		Summary:     "Удалить маркер",
		Description: "Удаляет маркер вместе с аудиозаписью. Подписчики получают DeleteMarker.",
		Tags:        []string{tag},
		Middlewares: h.middleware,
	}
}

func (h *Handler) uploadAudioOp() huma.Operation {
	return huma.Operation{
		OperationID:  "markers-audio-add",
		Method:       http.MethodPost,
		Path:         "/api/markers/audio/add",
		Summary:      "Загрузить аудиозапись",
		Description:  "multipart/form-data, поле file. Файл с именем <id>.mp3 привязывается к маркеру id.",
		Tags:         []string{tag, "audio"},
		MaxBodyBytes: h.maxAudioBytes + multipartOverhead,
		Middlewares:  h.middleware,
	}
}

func (h *Handler) audioOp() huma.Operation {
	return huma.Operation{
		OperationID: "markers-audio-get",
		Method:      http.MethodGet,
		Path:        "/api/markers/audio/{id}",
		Summary:     "Получить аудиозапись",
		Tags:        []string{tag, "audio"},
		Middlewares: h.middleware,
	}
}
