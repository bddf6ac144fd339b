package telegram

// Callback data. Prefixed values carry an argument after the prefix.
const (
	cbTales             = "tales"
	cbVocabulary        = "vocabulary"
	cbGrammar           = "grammar"
	cbLexicon           = "lexicon"
	cbAlphabet          = "alphabet"
	cbAlphabetLetters   = "alphabet_letters"
	cbAlphabetVowels    = "alphabet_vowels"
	cbAlphabetConsonant = "alphabet_consonants"
	cbBackToMain        = "back_to_main"
	cbBackToTales       = "back_to_tales"
	cbBackToVocabulary  = "back_to_vocabulary"
	cbShowProgress      = "show_progress"

	cbTalesPage    = "tales_page_"
	cbShowStory    = "show_story_"
	cbShowGrammar  = "show_grammar_"
	cbShowLexicon  = "show_lexicon_"
	cbLangRussian  = "lang_ru_"
	cbLangKhanty   = "lang_kh_"
	cbBackToLang   = "back_to_lang_"
	cbPlayAudio    = "play_audio_"
	cbStartTest    = "start_test_"
	cbTestAnswer   = "test_answer_"
	cbLexiconTheme = "lexicon_theme_"
)

const (
	btnTales        = "📖 Сказки"
	btnVocabulary   = "📚 Словарик"
	btnMainMenu     = "🗂️ Главное меню"
	btnBack         = "🔙 Назад"
	btnPrev         = "◀️ Назад"
	btnNext         = "Вперед ▶️"
	btnGrammar      = "📝 Общая грамматика"
	btnLexicon      = "🔤 Общая лексика"
	btnAlphabet     = "🔡 Алфавит"
	btnLetters      = "🔠 Названия букв"
	btnVowels       = "🔡 Гласные звуки"
	btnConsonants   = "🔣 Согласные звуки"
	btnRussian      = "🇷🇺 Русский"
	btnKhanty       = "🦦 Хантыйский"
	btnAudio        = "🎧 Аудио"
	btnStoryGrammar = "📝 Грамматика"
	btnStoryLexicon = "🔤 Лексика"
	btnTakeTest     = "📝 Пройти тест"
	btnChangeLang   = "🌐 Сменить язык"
)

const (
	welcomeFormat = "🌟 Вўща, <b>%s</b> 🐾\n \n" +
		"Добро пожаловать в чат-бот для изучения казымского диалекта хантыйского языка!\n\n" +
		"<b>Здесь ты сможешь:</b>\n" +
		"   • 📖 Прочитать сказки на хантыйском и русском\n" +
		"   • 📚 Изучить слова и грамматику\n" +
		"   • 🔤 Познакомиться с алфавитом и фонетикой\n\n" +
		"<b>Выбери интересующий раздел:</b>"
	defaultName = "друг"

	mainMenuFormat = "🌟 <b>%s</b>, ты в главном меню! \n \n" +
		"Выбери <b>📖 Cказки</b>, если хочешь: \n" +
		" • почитать или послушать сказки на хантыйском,\n" +
		" • увидеть русский перевод сказки,\n" +
		" • пройти тест на знание материала,\n\n" +
		"Выбери <b>📚 Словарик</b>, если хочешь:\n" +
		" • почитать про хантыйский алфавит,\n" +
		" • увидеть список слов с переводом,\n" +
		" • узнать грамматические правила. \n\n"

	vocabularyText = "📚 Выбери раздел словаря:\n\n" +
		"В <b>📝 Общей грамматике</b> можешь прочитать о грамматических правилах: \n" +
		" • Сколько чисел в хантыйском и как они образуются,\n " +
		" • Какие есть падежные суффиксы,\n" +
		" • Как ласково сказать белочка или рыбка.\n\n" +
		"В <b>🔤 Общей лексике</b> сможешь узнать слова из разных категорий:\n" +
		" • Еда,\n" +
		" • Животные,\n" +
		" • Природа и другие.\n\n" +
		"В <b>🔡 Алфавите</b> можешь увидеть:\n" +
		" • Названия букв\n" +
		" • Гласные звуки\n" +
		" • Согласные звуки.\n"

	talesFirstText = "📖 Выбери сказку на этой страничке или нажми <b>Вперёд ▶️</b>, чтобы увидеть другие:"
	talesPageText  = "📖 Выбери сказку или воспользуйся кнопками <b>Вперёд ▶️</b> и <b>◀️ Назад</b> для перехода по меню:"

	chooseLanguageFormat = "📖 <b>%s</b>\nВыбери язык:"
	readCountFormat      = " (прочитано %d раз)"

	storyGrammarFormat = "📝 <b>Грамматика для сказки '%s':</b>\n%s"
	storyLexiconFormat = "🔤 <b>Лексика для сказки '%s':</b>\n%s"
	lexiconMenuText    = "📚 Выбери тематику словаря:"
	alphabetMenuText   = "🔤 Выбери раздел алфавита:"

	questionFormat   = "📝 Вопрос %d/%d\n%s"
	correctFormat    = "✅ Верно!\n%s"
	correctAfterMiss = "✅ Теперь верно.\n%s"
	noExplanation    = "Объяснение отсутствует."
	resultFormat     = "📊 Тест по сказке '%s' завершён!\nВаш результат: %.1f из %d (%d%%)\n%s"
	passedText       = "🎉 Поздравляем! Вы успешно прошли тест."
	retryText        = "Вы можете пройти тест ещё раз."

	progressHeader = "📊 <b>Ваш прогресс:</b>\n" +
		"📖 Прочитано сказок: %d\n" +
		"🔁 Всего прочтений: %d\n" +
		"✅ Завершено тестов: %d\n" +
		"<b>Недавно прочитанные:</b>\n"
	progressLineFormat = "%s <b>%s</b> - прочитано %d раз(а)\n"
	progressEmpty      = "Вы еще не читали сказки\n"
	progressFailed     = "⚠️ Произошла ошибка при загрузке вашего прогресса"

	audioPerformer     = "Хантыйская сказка"
	audioCaptionFormat = "🎧 %s"

	useMenuText     = "Пожалуйста, используйте кнопки меню или команду /start"
	unsupportedText = "Извините, я не понимаю этот тип сообщений. Используйте кнопки меню."
	grammarMissing  = "❌ Информация по грамматике не найдена"
)

// Alert texts shown in the callback answer popup.
const (
	alertWrongAnswer   = "❌ Неверно.\nПопробуйте снова."
	alertNoQuiz        = "Для этой сказки пока нет теста"
	alertNoSession     = "Тест не найден"
	alertStaleAnswer   = "⚠️ Этот вопрос уже пройден"
	alertInvalidChoice = "⚠️ Такого варианта ответа нет"
	alertNoGrammar     = "❌ Для этой сказки нет грамматики"
	alertNoLexicon     = "❌ Для этой сказки нет лексики"
	alertNoDictionary  = "❌ В словаре нет доступной лексики"
	alertNoTheme       = "Тема не найдена"
	alertNoAlphabet    = "❌ Данные об алфавите не загружены"
	alertNoAudio       = "⚠️ Для этой сказки нет аудио"
	alertAudioMissing  = "⚠️ Аудиофайл не найден"
	alertStoryNotFound = "⚠️ Сказка не найдена"
	alertUnknown       = "⚠️ Неизвестная команда"

	failMenu     = "⚠️ Ошибка при загрузке меню"
	failStory    = "⚠️ Ошибка при загрузке сказки"
	failAudio    = "⚠️ Ошибка при загрузке аудио"
	failGrammar  = "⚠️ Ошибка при загрузке грамматики"
	failLexicon  = "⚠️ Ошибка при загрузке лексики"
	failLanguage = "⚠️ Ошибка при возврате к выбору языка"
	failTest     = "⚠️ Ошибка при запуске теста"
	failAnswer   = "⚠️ Ошибка при обработке ответа"
	failData     = "⚠️ Ошибка при загрузке данных"
	failBack     = "⚠️ Ошибка при возврате в меню"
	failTheme    = "⚠️ Ошибка при загрузке темы"
)
