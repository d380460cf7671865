package bot

import "fmt"

// Пользовательские тексты бота. Язык ответов - индонезийский, как у
// аудитории фаучета; тексты перенесены из исходного бота без изменений.
const (
	textWelcome = "👋 Selamat datang di *Fluxion Faucet!*\n\n" +
		"📊 Kurs: *Rp350 - Rp700* per iklan\n" +
		"💡 Cara dapat poin:\n" +
		"- Tonton iklan\n" +
		"- Klaim poin\n" +
		"- Tarik ke DANA/OVO/Gopay\n\n" +
		"Klik tombol di bawah untuk mulai:"

	textRegisterFailed = "⚠️ Gagal menyimpan data user, silahkan coba kembali /start."
	textGenericFailed  = "⚠️ Terjadi kesalahan pada server. Silakan coba lagi nanti."

	textHistoryEmpty  = "📭 Belum ada riwayat."
	textHistoryHeader = "🕓 *Riwayat Terakhir:*\n"

	textVerifyPrompt = "Silakan kirim data verifikasi kamu:"
	textVerifySaved  = "✅ Verifikasi disimpan."

	textChooseMethod      = "Pilih metode penarikan:"
	textAmountPrompt      = "Masukkan jumlah poin:"
	textAmountNotNumber   = "❌ Masukkan jumlah poin dalam angka."
	textAmountBelowMin    = "❌ Minimal penarikan adalah Rp100.000"
	textBalanceTooLow     = "❌ Saldo tidak cukup."
	textWithdrawSubmitted = "✅ Permintaan penarikan dikirim."

	textConfirmFailed = "❌ Gagal memproses permintaan."

	textAccessDenied = "❌ Akses ditolak."
	textNotAdmin     = "Kamu bukan admin."

	textGrantUserIDPrompt   = "Masukkan user ID:"
	textGrantUserIDInvalid  = "⚠️ User ID tidak valid. Harus berupa angka."
	textGrantServerFailed   = "⚠️ Gagal menghubungi server. Coba lagi nanti."
	textGrantUserNotFound   = "❌ User ID tidak ditemukan."
	textGrantAmountInvalid  = "❌ Jumlah poin harus berupa angka yang valid."
	textGrantSent           = "✅ Poin dikirim."
	textStatsFailed         = "⚠️ Gagal mengambil data statistik."
	textApproveUsage       = "Format salah. Contoh: /approve 123456789"
	textApproveIDNotNumber = "User ID harus berupa angka. Contoh: /approve 123456789"
)

// textIneligible строит сообщение об отказе гейта с живыми счётчиками
// (сколько рефералов есть и сколько требуется).
func textIneligible(jumlah, target int) string {
	return "🔔 *Informasi Aktivitas Referral Anda*\n\n" +
		"Terima kasih telah menggunakan layanan kami.\n\n" +
		fmt.Sprintf("Saat ini, sistem mendeteksi bahwa dari total *%d referral* yang Anda undang, "+
			"belum memenuhi kriteria sebagai *referral aktif*.\n\n", jumlah) +
		fmt.Sprintf("Untuk melanjutkan proses penarikan saldo, silakan pastikan Anda telah mengundang minimal "+
			"*%d teman yang benar-benar aktif* menggunakan bot.\n\n", target) +
		"Langkah ini kami terapkan demi menjaga kualitas dan integritas sistem reward.\n\n" +
		"Apabila ada pertanyaan lebih lanjut, jangan ragu untuk menghubungi tim dukungan kami.\n\n" +
		"_Hormat kami,_\n" +
		"*Tim Fluxion Faucet*"
}
