package models

import (
	"time"
)

type User struct {
	ID           string     `gorm:"primaryKey;size:36"            json:"id"`
	Username     string     `gorm:"uniqueIndex;not null"          json:"username"`
	Email        string     `gorm:"uniqueIndex;not null"          json:"email"`
	PasswordHash string     `gorm:"not null"                      json:"-"`
	FirstName    string     `gorm:"column:nombre"                 json:"nombre,omitempty"`
	LastName     string     `gorm:"column:apellido"               json:"apellido,omitempty"`
	IsAdmin      bool       `gorm:"column:es_admin;default:false" json:"es_admin"`
	Active       bool       `gorm:"column:activo;default:true"    json:"activo"`
	LastLogin    *time.Time `gorm:"column:ultimo_login"           json:"ultimo_login,omitempty"`
	CreatedAt    time.Time  `json:"-"`
}

type RefreshToken struct {
	ID        uint      `gorm:"primaryKey"             json:"id"`
	Token     string    `gorm:"uniqueIndex;not null"   json:"token"`
	UserID    string    `gorm:"index;not null;size:36" json:"user_id"`
	ExpiresAt time.Time `gorm:"index;not null"         json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	Revoked   bool      `gorm:"default:false"          json:"revoked"`
}

type Genre struct {
	ID          string `gorm:"primaryKey;size:36"                 json:"id"`
	Name        string `gorm:"column:nombre;uniqueIndex;not null" json:"nombre"`
	Description string `gorm:"column:descripcion"                 json:"descripcion,omitempty"`
}

type Actor struct {
	ID        string `gorm:"primaryKey;size:36"       json:"id"`
	FirstName string `gorm:"column:nombre;not null"   json:"nombre"`
	LastName  string `gorm:"column:apellido;not null" json:"apellido"`
	Country   string `gorm:"column:pais_origen"       json:"pais_origen,omitempty"`
	AvatarURL string `gorm:"column:url_avatar"        json:"URLavatar,omitempty"`
}

type Movie struct {
	ID          string    `gorm:"primaryKey;size:36"          json:"id"`
	Title       string    `gorm:"column:titulo;not null"      json:"titulo"`
	Description string    `gorm:"column:descripcion"          json:"descripcion"`
	ReleaseDate time.Time `gorm:"column:fecha_lanzamiento"    json:"fecha_lanzamiento"`
	DurationMin int       `gorm:"column:duracion_min"         json:"duracion_min"`
	Rating      string    `gorm:"column:clasificacion;size:8" json:"clasificacion"`
	AvgRating   float64   `gorm:"column:promedio_calificacion;default:0" json:"promedio_calificacion"`
	PosterURL   string    `gorm:"column:url_poster"           json:"URLposter"`
	DirectorID  *string   `gorm:"column:director_id;size:36"  json:"director_id,omitempty"`
	Director    *Actor    `gorm:"foreignKey:DirectorID"       json:"director,omitempty"`
	Genres      []Genre   `gorm:"many2many:movie_genres"      json:"generos,omitempty"`
	Actors      []Actor   `gorm:"many2many:movie_actors"      json:"actores,omitempty"`
}
