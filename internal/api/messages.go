package telegram

const (
	msgStart = `👋 Hi! I classify blood cell microscopy images and flag signs of leukemia.

📸 Send me a single cell image (photo or image file up to 5 MB) and I will tell you the predicted cell type.

📋 Commands:
/check — analyze a new image
/model cnn|gru — choose the model
/login <token> — sign in with your account token
/help — help`

	msgHelp = `ℹ️ How to use the bot:

1️⃣ Send a photo or an image file of a single blood cell
2️⃣ The bot sends the image to the model and waits for the prediction
3️⃣ You receive the cell type, the confidence and a short explanation

👩‍⚕️ Doctors can sign in with /login and send the result to their patients.

📋 Commands:
/check — analyze a new image
/model cnn|gru — choose the model (CNN or CNN + GRU)
/rerun — classify the current image again
/clear — forget the current image
/login <token> — sign in
/logout — sign out
/cancel — cancel the current operation`

	msgAwaitingPhoto   = "📸 Send a blood cell image to analyze."
	msgSendPhoto       = "📸 Please send a blood cell image (photo or image file)."
	msgCancelled       = "❌ Operation cancelled. Send /check to analyze a new image."
	msgUnknownCommand  = "❓ Unknown command. Use /help for the list of commands."
	msgMatching        = "Matching... Please Wait..."
	msgProcessingError = "⚠️ Could not process the image. Please try another one."
	msgNoImage         = "📸 No image selected. Send an image first."
	msgCleared         = "🧹 Image cleared."
	msgBusy            = "⏳ The report is being sent, please wait."
	msgStillMatching   = "⏳ The image is still being classified, please wait."
	msgFinishDialog    = "👆 Select patients above or press Cancel."

	msgLoginUsage   = "🔑 Usage: /login <token>"
	msgLoginFailed  = "⚠️ Sign in failed: %s"
	msgLoggedIn     = "✅ Signed in as %s (%s)."
	msgLoggedOut    = "👋 Signed out."
	msgModelUsage   = "🧠 Choose the model:"
	msgModelSet     = "🧠 Model set to %s. Use /rerun to classify the current image again."
	msgModelInvalid = "⚠️ Unknown model. Use /model cnn or /model gru."

	msgReportSent      = "✅ Report sent successfully to selected patients."
	msgDialogCancelled = "❌ Sending cancelled."
	msgOnlyDoctors     = "Only doctors can send reports. Sign in with /login."
	msgNothingToSend   = "Nothing to send yet. Wait for a successful result."
	msgDialogOpen      = "The patient list is already open."
	msgSelectPatient   = "Please select at least one patient."
)
