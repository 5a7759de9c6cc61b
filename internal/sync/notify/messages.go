package notify

// Titles.
const (
	TitleSuccess     = "Thành công"
	TitleError       = "Lỗi"
	TitleLoginError  = "Lỗi đăng nhập"
	TitleSignUpError = "Lỗi đăng ký"
	TitleFormatError = "Lỗi định dạng"
	TitleCopied      = "Đã sao chép"
)

// Content store.
const (
	MsgContentLoadFailed   = "Không thể tải nội dung"
	MsgContentUpdated      = "Nội dung đã được cập nhật"
	MsgContentUpdateFailed = "Không thể cập nhật nội dung"
)

// Product store.
const (
	MsgProductsLoadFailed  = "Không thể tải sản phẩm"
	MsgProductAdded        = "Sản phẩm đã được thêm"
	MsgProductAddFailed    = "Không thể thêm sản phẩm"
	MsgProductUpdated      = "Sản phẩm đã được cập nhật"
	MsgProductUpdateFailed = "Không thể cập nhật sản phẩm"
	MsgProductDeleted      = "Sản phẩm đã được xóa"
	MsgProductDeleteFailed = "Không thể xóa sản phẩm"
	MsgProductInvalid      = "Vui lòng nhập tên và danh mục sản phẩm"
	MsgImportEmpty         = "Vui lòng nhập dữ liệu CSV"
	MsgImportMissingCols   = "CSV phải có ít nhất cột 'title' và 'category'"
	MsgImportFailed        = "Có lỗi xảy ra khi import dữ liệu"
	MsgImportedFmt         = "Đã import %d sản phẩm"
)

// Settings.
const (
	MsgSettingsUpdated      = "Cài đặt website đã được cập nhật"
	MsgSettingsUpdateFailed = "Không thể cập nhật cài đặt website"
)

// Auth gate.
const (
	MsgSignedIn           = "Đăng nhập thành công"
	MsgInvalidCredentials = "Email hoặc mật khẩu không đúng"
	MsgSignInFailed       = "Có lỗi xảy ra khi đăng nhập"
	MsgSignedUp           = "Đăng ký thành công! Vui lòng kiểm tra email để xác nhận tài khoản."
	MsgSignUpFailed       = "Có lỗi xảy ra khi đăng ký"
	MsgSignedOut          = "Đăng xuất thành công"
	MsgSignOutFailed      = "Có lỗi xảy ra khi đăng xuất"
)

// Share links.
const (
	MsgLinkCopied     = "Link đã được sao chép vào clipboard"
	MsgLinkCopyFailed = "Không thể sao chép link"
)
