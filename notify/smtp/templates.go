package smtp

type messageTemplate struct {
	subject string
	body    string
}

// Body templates take the verification code as their single argument.
var templates = map[string]messageTemplate{
	"en": {
		subject: "Your verification code",
		body: `<h2>Verification code</h2>
<p>Your verification code is <strong>%s</strong>.</p>
<p>The code expires in a few minutes. If you did not request it, you can ignore this email.</p>`,
	},
	"ja": {
		subject: "認証コードのお知らせ",
		body: `<h2>認証コード</h2>
<p>認証コードは <strong>%s</strong> です。</p>
<p>コードは数分で無効になります。心当たりがない場合はこのメールを無視してください。</p>`,
	},
	"ko": {
		subject: "인증 코드 안내",
		body: `<h2>인증 코드</h2>
<p>인증 코드는 <strong>%s</strong> 입니다.</p>
<p>코드는 몇 분 후 만료됩니다. 요청하지 않았다면 이 메일을 무시하세요.</p>`,
	},
	"zh": {
		subject: "您的验证码",
		body: `<h2>验证码</h2>
<p>您的验证码是 <strong>%s</strong>。</p>
<p>验证码将在几分钟后失效。如果这不是您的操作，请忽略此邮件。</p>`,
	},
	"es": {
		subject: "Tu código de verificación",
		body: `<h2>Código de verificación</h2>
<p>Tu código de verificación es <strong>%s</strong>.</p>
<p>El código caduca en unos minutos. Si no lo solicitaste, puedes ignorar este correo.</p>`,
	},
	"fr": {
		subject: "Votre code de vérification",
		body: `<h2>Code de vérification</h2>
<p>Votre code de vérification est <strong>%s</strong>.</p>
<p>Le code expire dans quelques minutes. Si vous n'en êtes pas à l'origine, ignorez cet e-mail.</p>`,
	},
	"de": {
		subject: "Ihr Bestätigungscode",
		body: `<h2>Bestätigungscode</h2>
<p>Ihr Bestätigungscode lautet <strong>%s</strong>.</p>
<p>Der Code läuft in wenigen Minuten ab. Falls Sie ihn nicht angefordert haben, ignorieren Sie diese E-Mail.</p>`,
	},
	"pt": {
		subject: "Seu código de verificação",
		body: `<h2>Código de verificação</h2>
<p>Seu código de verificação é <strong>%s</strong>.</p>
<p>O código expira em alguns minutos. Se você não o solicitou, ignore este e-mail.</p>`,
	},
	"id": {
		subject: "Kode verifikasi Anda",
		body: `<h2>Kode verifikasi</h2>
<p>Kode verifikasi Anda adalah <strong>%s</strong>.</p>
<p>Kode akan kedaluwarsa dalam beberapa menit. Abaikan email ini jika Anda tidak memintanya.</p>`,
	},
}

func templateFor(locale string) messageTemplate {
	if tpl, ok := templates[locale]; ok {
		return tpl
	}
	return templates["en"]
}
