package database

import (
	"edu_quiz_backend/internal/config"
	"edu_quiz_backend/internal/model"
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	return db, nil
}

// Migrate 同步全部表结构。release 模式下默认不执行，由启动参数显式触发。
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.CourseEnrollment{},
		&model.LearningModule{},
		&model.UserProgress{},
		&model.Assessment{},
		&model.Quiz{},
		&model.QuizSection{},
		&model.QuestionGroup{},
		&model.Question{},
		&model.AnswerOption{},
		&model.QuizAttempt{},
		&model.Notification{},
	)

	if err != nil {
		return err
	}

	log.Println("Database migration completed")
	return nil
}
