package bot

// Ответы пользователю. Формулировки согласованы с саппортом.
const (
	replyGreeting = "👋 Добро пожаловать! Пожалуйста, выберите способ ввода VIN-кода."

	replyUploadPhoto = "Пожалуйста, загрузите фото с VIN-кодом."
	replyTypeVIN     = "Пожалуйста, введите VIN-код."

	replyBadVIN            = "Некорректный VIN-код. Пожалуйста, введите корректный VIN-код."
	replyDecodeFailed      = "Не удалось получить информацию о машине по VIN-коду."
	replyDecodeUnavailable = "Сервис расшифровки сейчас недоступен. Попробуйте ещё раз чуть позже."
	replyOCRFailed         = "Не удалось распознать VIN-код с фотографии. Пожалуйста, попробуйте снова."

	replyEnterVIN  = "Пожалуйста, введите корректный VIN-код."
	replyEnterPart = "Отлично! Пожалуйста, введите название или артикул необходимой запчасти."

	replyNothingFound = "Ничего не нашлось. Попробуйте другой запрос или артикул."
	replyClarify      = "Уточните, пожалуйста, какая запчасть нужна (например: масляный фильтр, тормозные колодки) или пришлите артикул."
	replyFoundHeader  = "Вот что удалось найти:"

	replySelectedFmt       = "Вы выбрали артикул %s. Менеджер свяжется с вами для оформления заказа."
	replyVehicleConfirmFmt = "Ваш автомобиль: %s. Верно? (да/нет)"
)

const (
	callbackUploadPhoto  = "upload_photo"
	callbackEnterVIN     = "enter_vin"
	callbackSelectPrefix = "select:"
)
